package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/core/admission"
	"github.com/jakechorley/major-admission/pkg/db"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// StudentSource provides roster records (a local file or a Google Sheet)
type StudentSource interface {
	ListStudents(ctx context.Context) ([]roster.Record, error)
	Describe() string
}

// ResultSink receives records with their admitted majors filled in
type ResultSink interface {
	WriteResults(ctx context.Context, records []roster.Record) error
}

// NewAllocator builds an allocator from config. A non-empty strategy overrides
// the configured one, together with rounds.
func NewAllocator(cfg *config.Config, strategy string, rounds int) (*admission.Allocator, error) {
	if strategy == "" {
		strategy = cfg.Strategy
		rounds = cfg.Rounds
	}

	s, err := admission.ParseStrategy(strategy, rounds)
	if err != nil {
		return nil, err
	}

	majors := make([]admission.MajorQuota, len(cfg.Majors))
	for i, m := range cfg.Majors {
		majors[i] = admission.MajorQuota{Name: m.Name, Quota: m.Quota}
	}

	preferences := make(map[admission.PreferenceCode][]string, len(cfg.Preferences))
	for code, majorNames := range cfg.Preferences {
		preferences[admission.PreferenceCode(code)] = majorNames
	}

	alloc, err := admission.New(admission.Config{
		Majors:      majors,
		Preferences: preferences,
		Priority:    admission.Priority(cfg.Priority),
		Strategy:    s,
		FoldCase:    cfg.FoldCase,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}

	return alloc, nil
}

// studentNames maps student IDs to names, skipping blanks
func studentNames(records []roster.Record) map[string]string {
	names := make(map[string]string, len(records))
	for _, r := range records {
		if r.Name != "" {
			names[r.StudentID] = r.Name
		}
	}
	return names
}

// duplicateIDs returns student IDs that appear more than once, in first-seen order
func duplicateIDs(records []roster.Record) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, r := range records {
		seen[r.StudentID]++
		if seen[r.StudentID] == 2 {
			dups = append(dups, r.StudentID)
		}
	}
	return dups
}

// findLatestRun returns the run with the most recent creation time
func findLatestRun(runs []db.Run) *db.Run {
	if len(runs) == 0 {
		return nil
	}

	latest := &runs[0]
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(latest.CreatedAt) {
			latest = &runs[i]
		}
	}
	return latest
}
