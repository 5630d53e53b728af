package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ResultSheetName is the sheet title used for xlsx result files
const ResultSheetName = "录取结果"

// ErrUnsupportedFormat is returned for file extensions the roster cannot handle
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// File reads students from and writes results to a csv or xlsx file
type File struct {
	Path string
}

// ListStudents reads all records from the file
func (f File) ListStudents(ctx context.Context) ([]Record, error) {
	return ReadFile(f.Path)
}

// WriteResults writes records with their admitted majors to the file
func (f File) WriteResults(ctx context.Context, records []Record) error {
	return WriteFile(f.Path, records)
}

// Describe names the file for logs and stored runs
func (f File) Describe() string {
	return "file:" + filepath.Base(f.Path)
}

// ReadFile reads a roster, choosing the decoder from the file extension
func ReadFile(path string) ([]Record, error) {
	var (
		raw [][]string
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		raw, err = readCSV(path)
	case ".xlsx":
		raw, err = readXLSX(path)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls files must be saved as .xlsx first", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	records, err := ParseRows(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// WriteFile writes records as a result file, choosing the encoder from the file extension
func WriteFile(path string, records []Record) error {
	rows := ResultRows(records)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return writeCSV(path, rows)
	case ".xlsx":
		return writeXLSX(path, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	return decodeCSV(file)
}

func decodeCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// writeCSV writes UTF-8 with a BOM so spreadsheet tools detect the encoding
func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	if _, err := io.WriteString(file, utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}

	return file.Close()
}

func readXLSX(path string) ([][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func writeXLSX(path string, rows [][]string) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), ResultSheetName); err != nil {
		return fmt.Errorf("failed to name result sheet: %w", err)
	}

	widths := make([]int, len(ResultHeaders))
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := book.SetCellStr(ResultSheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
			if c < len(widths) {
				widths[c] = max(widths[c], utf8.RuneCountInString(value))
			}
		}
	}

	// Size columns to content
	for c, width := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return fmt.Errorf("failed to name column: %w", err)
		}
		if err := book.SetColWidth(ResultSheetName, name, name, float64(width+2)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save xlsx file: %w", err)
	}
	return nil
}
