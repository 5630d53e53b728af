package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jakechorley/major-admission/pkg/core/admission"
)

const utf8BOM = "\ufeff"

// Record is one row of a student roster or result file
type Record struct {
	Seq       string
	StudentID string
	Name      string
	Score     float64
	Code      string
	Major     string // major column from the source file, carried through unchanged
	Admitted  string // rendered admission outcome, empty until allocated
}

// column identifies a roster field and the header names it may appear under
type column struct {
	key      string
	aliases  []string
	required bool
}

var (
	colSeq       = column{key: "seq", aliases: []string{"序号", "No", "No.", "Seq"}}
	colStudentID = column{key: "student_id", aliases: []string{"学号", "Student ID", "StudentID", "ID"}, required: true}
	colName      = column{key: "name", aliases: []string{"姓名", "Name"}}
	colScore     = column{key: "score", aliases: []string{"分数", "成绩", "Score", "Rank"}, required: true}
	colCode      = column{key: "code", aliases: []string{"志愿选择", "选课选项", "Preference", "Preference code"}, required: true}
	colMajor     = column{key: "major", aliases: []string{"专业", "Major"}}
	colAdmitted  = column{key: "admitted", aliases: []string{"录取专业", "最终结果", "Admitted major", "Admitted"}}

	rosterColumns = []column{colSeq, colStudentID, colName, colScore, colCode, colMajor, colAdmitted}
)

// ResultHeaders are the column headers written to result files
var ResultHeaders = []string{"序号", "学号", "姓名", "分数", "志愿选择", "录取专业"}

// ParseRows converts raw tabular data (header row first) into records.
// Columns are located by header name; rows without a student ID are skipped.
func ParseRows(raw [][]string) ([]Record, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	headerRow := raw[0]

	for _, col := range rosterColumns {
		index := findHeader(headerRow, col.aliases)
		if index == -1 {
			if col.required {
				return nil, fmt.Errorf("missing required field in header: %s", col.aliases[0])
			}
			continue
		}
		fieldIndexes[col.key] = index
	}

	getField := func(col column, row []string) string {
		index, ok := fieldIndexes[col.key]
		if !ok || index >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[index])
	}

	records := make([]Record, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		studentID := getField(colStudentID, row)
		if studentID == "" {
			continue
		}

		scoreStr := getField(colScore, row)
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("invalid score %q for student %s in row %d", scoreStr, studentID, i+1)
		}

		records = append(records, Record{
			Seq:       getField(colSeq, row),
			StudentID: studentID,
			Name:      getField(colName, row),
			Score:     score,
			Code:      getField(colCode, row),
			Major:     getField(colMajor, row),
			Admitted:  getField(colAdmitted, row),
		})
	}

	return records, nil
}

func findHeader(headerRow []string, aliases []string) int {
	for i, cell := range headerRow {
		name := strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM))
		for _, alias := range aliases {
			if strings.EqualFold(name, alias) {
				return i
			}
		}
	}
	return -1
}

// Students converts records into allocator input, preserving order
func Students(records []Record) []admission.Student {
	students := make([]admission.Student, len(records))
	for i, r := range records {
		students[i] = admission.Student{
			ID:       r.StudentID,
			Priority: r.Score,
			Code:     admission.PreferenceCode(r.Code),
		}
	}
	return students
}

// ApplyResults copies rendered outcomes onto records.
// results must be in the same order as records.
func ApplyResults(records []Record, results []admission.Result) ([]Record, error) {
	if len(records) != len(results) {
		return nil, fmt.Errorf("have %d records but %d results", len(records), len(results))
	}
	out := make([]Record, len(records))
	for i, r := range records {
		if r.StudentID != results[i].Student.ID {
			return nil, fmt.Errorf("result %d is for student %s, expected %s", i, results[i].Student.ID, r.StudentID)
		}
		r.Admitted = results[i].Outcome.String()
		out[i] = r
	}
	return out, nil
}

// ResultRows renders records as rows under ResultHeaders, header row first
func ResultRows(records []Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), ResultHeaders...))
	for _, r := range records {
		rows = append(rows, []string{
			r.Seq,
			r.StudentID,
			r.Name,
			FormatScore(r.Score),
			r.Code,
			r.Admitted,
		})
	}
	return rows
}

// FormatScore renders a score without trailing zeros
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
