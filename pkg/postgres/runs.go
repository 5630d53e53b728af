package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/major-admission/pkg/db"
)

var _ db.RunStore = (*DB)(nil)

// InsertRun stores a run and its placements in one transaction
func (d *DB) InsertRun(ctx context.Context, run *db.Run, placements []db.Placement) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO admission_run (id, created_at, source, strategy, priority, student_count, quotas)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.CreatedAt.UTC(), run.Source, run.Strategy, run.Priority, run.StudentCount, run.Quotas)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range placements {
		batch.Queue(`
			INSERT INTO placement (run_id, position, student_id, name, priority, code, outcome, major, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, run.ID, i, p.StudentID, nullable(p.Name), p.Priority, p.Code, p.Outcome, nullable(p.Major), p.Status)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert placements: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRuns retrieves all runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, created_at, source, strategy, priority, student_count, quotas
		FROM admission_run
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves one run by ID
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, created_at, source, strategy, priority, student_count, quotas
		FROM admission_run
		WHERE id = $1
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetPlacements retrieves the placements of a run in input order
func (d *DB) GetPlacements(ctx context.Context, runID string) ([]db.Placement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, student_id, name, priority, code, outcome, major, status
		FROM placement
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query placements: %w", err)
	}
	defer rows.Close()

	var placements []db.Placement
	for rows.Next() {
		var p db.Placement
		var name, major *string
		if err := rows.Scan(&p.RunID, &p.StudentID, &name, &p.Priority, &p.Code, &p.Outcome, &major, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		if name != nil {
			p.Name = *name
		}
		if major != nil {
			p.Major = *major
		}
		placements = append(placements, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating placements: %w", err)
	}

	return placements, nil
}

func scanRun(row pgx.Row) (*db.Run, error) {
	var r db.Run
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.Source, &r.Strategy, &r.Priority, &r.StudentCount, &r.Quotas); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &r, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
