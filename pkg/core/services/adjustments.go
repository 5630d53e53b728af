package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/core/admission"
)

// AdjustmentsResult lists students placed outside their first choice in a results file
type AdjustmentsResult struct {
	Adjustments []admission.Adjustment
	Names       map[string]string
	// Checked is the number of records with an outcome
	Checked int
	// Missing lists student IDs whose admitted column was blank
	Missing []string
}

// Adjustments reads an exported results file and finds every placed student whose
// admitted major is not their first choice
func Adjustments(ctx context.Context, source StudentSource, cfg *config.Config, logger *zap.Logger) (*AdjustmentsResult, error) {
	logger.Debug("Finding adjustments", zap.String("source", source.Describe()))

	alloc, err := NewAllocator(cfg, "", 0)
	if err != nil {
		return nil, err
	}

	records, err := source.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	result := &AdjustmentsResult{Names: studentNames(records)}
	results := make([]admission.Result, 0, len(records))
	for _, r := range records {
		if r.Admitted == "" {
			result.Missing = append(result.Missing, r.StudentID)
			continue
		}
		outcome, err := admission.ParseOutcome(r.Admitted)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", r.StudentID, err)
		}
		results = append(results, admission.Result{
			Student: admission.Student{ID: r.StudentID, Priority: r.Score, Code: admission.PreferenceCode(r.Code)},
			Outcome: outcome,
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no admitted majors found in %s; is this a results file?", source.Describe())
	}

	result.Checked = len(results)
	result.Adjustments = admission.FindAdjustments(alloc.Table(), results)
	logger.Info("Adjustments found",
		zap.Int("checked", result.Checked),
		zap.Int("adjusted", len(result.Adjustments)),
		zap.Int("missing", len(result.Missing)))

	return result, nil
}
