package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/core/admission"
	"github.com/jakechorley/major-admission/pkg/db"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// ErrNoDatabase is returned when saving is requested without a configured database
var ErrNoDatabase = errors.New("no database configured (set databaseURL or " + config.EnvDatabaseURL + ")")

// AdmitOptions controls a single admission run
type AdmitOptions struct {
	// Strategy overrides the configured strategy when non-empty
	Strategy string
	// Rounds is used with Strategy
	Rounds int
	// DryRun allocates and reports without writing results or saving
	DryRun bool
	// Save records the run in the run store
	Save bool
	// ForceCommit writes and saves even when validation finds violations
	ForceCommit bool
}

// AdmitResult contains the outcome of an admission run
type AdmitResult struct {
	RunID      string
	Source     string
	Strategy   string
	Majors     []string
	Records    []roster.Record
	Outcome    *admission.AllocationOutcome
	// Order lists indices into Records in the order the allocator considered them
	Order      []int
	Summary    admission.Summary
	Violations []admission.Violation
	Duplicates []string
	Success    bool
	Written    bool
	Saved      bool
}

// AdmitStore defines the database operations needed to record a run
type AdmitStore interface {
	InsertRun(ctx context.Context, run *db.Run, placements []db.Placement) error
}

// Admit reads the roster from source, allocates every student, validates the outcome
// and then writes results to sink and records the run in store.
// sink and store may be nil. If validation fails, nothing is written or saved
// unless opts.ForceCommit is set.
func Admit(
	ctx context.Context,
	source StudentSource,
	sink ResultSink,
	store AdmitStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts AdmitOptions,
) (*AdmitResult, error) {
	logger.Debug("Starting admit",
		zap.String("source", source.Describe()),
		zap.String("strategy_override", opts.Strategy),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("save", opts.Save),
		zap.Bool("force_commit", opts.ForceCommit))

	if opts.Save && !opts.DryRun && store == nil {
		return nil, ErrNoDatabase
	}

	alloc, err := NewAllocator(cfg, opts.Strategy, opts.Rounds)
	if err != nil {
		return nil, err
	}

	// Step 1: Read roster
	logger.Debug("Reading students")
	records, err := source.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read students: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no students found in %s", source.Describe())
	}
	logger.Info("Students loaded", zap.Int("count", len(records)))

	result := &AdmitResult{
		Source:     source.Describe(),
		Strategy:   alloc.Strategy(),
		Majors:     alloc.Majors(),
		Duplicates: duplicateIDs(records),
	}
	if len(result.Duplicates) > 0 {
		logger.Warn("Duplicate student IDs in roster", zap.Strings("ids", result.Duplicates))
	}

	// Step 2: Allocate
	before := alloc.OriginalQuotas()
	result.Outcome = alloc.Allocate(roster.Students(records))
	result.Order = alloc.ProcessingOrder(result.Outcome.Results)
	result.Summary = admission.Summarize(result.Majors, before, result.Outcome)
	logger.Info("Allocation complete",
		zap.String("strategy", result.Strategy),
		zap.Int("placed", result.Summary.Placed),
		zap.Int("unassigned", result.Summary.Unassigned),
		zap.Int("invalid", result.Summary.Invalid))

	for _, r := range result.Outcome.Results {
		if r.Outcome.Status == admission.StatusInvalidPreference {
			logger.Warn("Invalid preference code", zap.String("student_id", r.Student.ID), zap.String("code", string(r.Student.Code)))
		}
	}

	// Step 3: Validate
	result.Violations = admission.ValidateOutcome(alloc.Table(), before, result.Outcome)
	result.Success = len(result.Violations) == 0
	for _, v := range result.Violations {
		logger.Error("Allocation violation", zap.String("violation", v.String()))
	}

	result.Records, err = roster.ApplyResults(records, result.Outcome.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to apply results: %w", err)
	}

	if opts.DryRun {
		logger.Info("Dry run, skipping output")
		return result, nil
	}

	if !result.Success && !opts.ForceCommit {
		logger.Warn("Validation failed, skipping output (use --force-commit to override)",
			zap.Int("violations", len(result.Violations)))
		return result, nil
	}

	// Step 4: Write results
	if sink != nil {
		logger.Debug("Writing results")
		if err := sink.WriteResults(ctx, result.Records); err != nil {
			return nil, fmt.Errorf("failed to write results: %w", err)
		}
		result.Written = true
	}

	// Step 5: Record run
	if opts.Save {
		run := &db.Run{
			ID:           uuid.New().String(),
			CreatedAt:    time.Now().UTC(),
			Source:       result.Source,
			Strategy:     result.Strategy,
			Priority:     string(alloc.Priority()),
			StudentCount: len(records),
			Quotas:       before,
		}
		placements := db.NewPlacements(run.ID, result.Outcome.Results, studentNames(records))

		logger.Debug("Saving run", zap.String("run_id", run.ID), zap.Int("placements", len(placements)))
		if err := store.InsertRun(ctx, run, placements); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
		result.RunID = run.ID
		result.Saved = true
		logger.Info("Run saved", zap.String("run_id", run.ID))
	}

	return result, nil
}
