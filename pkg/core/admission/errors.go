package admission

import "errors"

var (
	// ErrInvalidConfig is returned by New and NewPreferenceTable for any misconfiguration
	ErrInvalidConfig = errors.New("invalid admission config")

	// ErrInvalidPreference is returned by PreferenceTable.Resolve for an unknown code
	ErrInvalidPreference = errors.New("invalid preference code")
)
