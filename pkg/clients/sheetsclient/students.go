package sheetsclient

import (
	"context"
	"fmt"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// valuesAPI is the part of Client the roster needs
type valuesAPI interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
	UpdateValues(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearValues(ctx context.Context, spreadsheetID, sheetRange string) error
	EnsureSheet(ctx context.Context, spreadsheetID, sheetTitle string) error
}

// Roster reads students from one tab of a spreadsheet and writes results to another
type Roster struct {
	api valuesAPI
	cfg config.SheetsConfig
}

// NewRoster binds a client to the configured spreadsheet tabs
func NewRoster(client *Client, cfg config.SheetsConfig) *Roster {
	return &Roster{api: client, cfg: cfg}
}

// ListStudents reads and parses the students tab
func (r *Roster) ListStudents(ctx context.Context) ([]roster.Record, error) {
	values, err := r.api.GetValues(ctx, r.cfg.SpreadsheetID, r.cfg.StudentsTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get student data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	records, err := roster.ParseRows(cellStrings(values))
	if err != nil {
		return nil, fmt.Errorf("failed to parse students: %w", err)
	}

	return records, nil
}

// WriteResults replaces the contents of the results tab with the result table
func (r *Roster) WriteResults(ctx context.Context, records []roster.Record) error {
	if err := r.api.EnsureSheet(ctx, r.cfg.SpreadsheetID, r.cfg.ResultsTab); err != nil {
		return fmt.Errorf("failed to prepare results tab: %w", err)
	}

	if err := r.api.ClearValues(ctx, r.cfg.SpreadsheetID, r.cfg.ResultsTab); err != nil {
		return fmt.Errorf("failed to clear results tab: %w", err)
	}

	target := fmt.Sprintf("%s!A1", r.cfg.ResultsTab)
	if err := r.api.UpdateValues(ctx, r.cfg.SpreadsheetID, target, cellValues(roster.ResultRows(records))); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	return nil
}

// Describe names the source for logs and stored runs
func (r *Roster) Describe() string {
	return fmt.Sprintf("sheet:%s/%s", r.cfg.SpreadsheetID, r.cfg.StudentsTab)
}

// cellStrings converts sheet cells to strings. Sheets returns formatted values as
// strings but numbers can arrive as float64 depending on the render option.
func cellStrings(raw [][]interface{}) [][]string {
	rows := make([][]string, len(raw))
	for i, row := range raw {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				rows[i][j] = v
			default:
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return rows
}

func cellValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
