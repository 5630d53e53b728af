package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jakechorley/major-admission/pkg/core/admission"
	"github.com/jakechorley/major-admission/pkg/roster"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// printResults prints one row per student in roster order
func printResults(w io.Writer, records []roster.Record) {
	table := newTable(w, []string{"序号", "学号", "姓名", "分数", "志愿选择", "录取专业"})
	for _, r := range records {
		table.Append([]string{r.Seq, r.StudentID, r.Name, roster.FormatScore(r.Score), r.Code, colorOutcome(r.Admitted)})
	}
	table.Render()
}

// printProcessingOrder lists students in allocation order with their position
func printProcessingOrder(w io.Writer, records []roster.Record, order []int) {
	headingColor.Fprintln(w, "\nProcessing order")

	table := newTable(w, []string{"#", "学号", "分数", "志愿选择", "录取专业"})
	for pos, i := range order {
		r := records[i]
		table.Append([]string{strconv.Itoa(pos + 1), r.StudentID, roster.FormatScore(r.Score), r.Code, colorOutcome(r.Admitted)})
	}
	table.Render()
}

// colorOutcome highlights outcomes that need attention
func colorOutcome(rendered string) string {
	outcome, err := admission.ParseOutcome(rendered)
	if err != nil {
		return rendered
	}
	switch outcome.Status {
	case admission.StatusAdjusted:
		return warnColor.Sprint(rendered)
	case admission.StatusUnassigned, admission.StatusInvalidPreference:
		return errColor.Sprint(rendered)
	default:
		return rendered
	}
}

// printSummary prints per-major counts followed by totals
func printSummary(w io.Writer, summary admission.Summary) {
	headingColor.Fprintln(w, "\nSummary")

	table := newTable(w, []string{"Major", "Quota", "Admitted", "First choice", "Adjusted", "Total", "Remaining"})
	for _, m := range summary.Majors {
		table.Append([]string{
			m.Major,
			strconv.Itoa(m.Quota),
			strconv.Itoa(m.Admitted),
			strconv.Itoa(m.FirstPick),
			strconv.Itoa(m.Adjusted),
			strconv.Itoa(m.Total),
			strconv.Itoa(m.Remaining),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Students: %d  Placed: %d  ", summary.Students, summary.Placed)
	if summary.Unassigned > 0 {
		errColor.Fprintf(w, "Unassigned: %d  ", summary.Unassigned)
	} else {
		fmt.Fprintf(w, "Unassigned: 0  ")
	}
	if summary.Invalid > 0 {
		errColor.Fprintf(w, "Invalid preference: %d\n", summary.Invalid)
	} else {
		fmt.Fprintln(w, "Invalid preference: 0")
	}
}

func printViolations(w io.Writer, violations []admission.Violation) {
	if len(violations) == 0 {
		return
	}
	errColor.Fprintf(w, "\n✗ Validation found %d problem(s):\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
}
