package db

import "context"

// RunStore defines the operations for persisting allocation runs.
// postgres.DB implements this interface.
type RunStore interface {
	// InsertRun stores the run and all of its placements atomically
	InsertRun(ctx context.Context, run *Run, placements []Placement) error
	// GetRuns returns all runs, newest first
	GetRuns(ctx context.Context) ([]Run, error)
	// GetRun returns a single run, or ErrRunNotFound
	GetRun(ctx context.Context, runID string) (*Run, error)
	// GetPlacements returns the placements of a run in original input order
	GetPlacements(ctx context.Context, runID string) ([]Placement, error)
}
