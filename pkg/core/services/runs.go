package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/pkg/db"
)

// RunHistoryStore defines the database operations needed to browse past runs
type RunHistoryStore interface {
	GetRuns(ctx context.Context) ([]db.Run, error)
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	GetPlacements(ctx context.Context, runID string) ([]db.Placement, error)
}

// ViewRunResult is a stored run with its placements and per-major counts
type ViewRunResult struct {
	Run        *db.Run
	Placements []db.Placement
	// MajorCounts is seats taken per major
	MajorCounts  map[string]int
	StatusCounts map[string]int
}

// ListRuns returns all stored runs, newest first
func ListRuns(ctx context.Context, store RunHistoryStore, logger *zap.Logger) ([]db.Run, error) {
	if store == nil {
		return nil, ErrNoDatabase
	}

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	slices.SortStableFunc(runs, func(a, b db.Run) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	logger.Debug("Found runs", zap.Int("count", len(runs)))

	return runs, nil
}

// ViewRun loads one run and its placements. An empty runID selects the latest run.
func ViewRun(ctx context.Context, store RunHistoryStore, logger *zap.Logger, runID string) (*ViewRunResult, error) {
	if store == nil {
		return nil, ErrNoDatabase
	}

	var run *db.Run
	if runID == "" {
		runs, err := store.GetRuns(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch runs: %w", err)
		}
		run = findLatestRun(runs)
		if run == nil {
			return nil, fmt.Errorf("no runs found - run admit with --save first")
		}
		logger.Debug("Using latest run", zap.String("run_id", run.ID))
	} else {
		var err error
		run, err = store.GetRun(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run: %w", err)
		}
	}

	placements, err := store.GetPlacements(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch placements: %w", err)
	}

	majorCounts := make(map[string]int, len(run.Quotas))
	for _, p := range placements {
		if p.Major != "" {
			majorCounts[p.Major]++
		}
	}

	return &ViewRunResult{
		Run:          run,
		Placements:   placements,
		MajorCounts:  majorCounts,
		StatusCounts: db.CountByStatus(placements),
	}, nil
}

// SortedMajors returns the majors of a stored run's quotas by name
func SortedMajors(run *db.Run) []string {
	majors := make([]string, 0, len(run.Quotas))
	for major := range run.Quotas {
		majors = append(majors, major)
	}
	slices.SortFunc(majors, cmp.Compare[string])
	return majors
}
