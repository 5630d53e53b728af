package db

import "errors"

// ErrRunNotFound is returned when a run ID does not exist in the store
var ErrRunNotFound = errors.New("run not found")
