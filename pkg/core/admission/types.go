package admission

import (
	"fmt"
	"maps"
	"strings"
)

// PreferenceCode identifies one row of the preference table (e.g. "A")
type PreferenceCode string

// Student is a single applicant as seen by the allocator
type Student struct {
	// ID is the caller's identifier for the student (student number)
	ID string

	// Priority is the rank or score used for ordering; its direction is set by Config.Priority
	Priority float64

	// Code selects the student's ordered list of majors
	Code PreferenceCode
}

// Status is the kind of terminal outcome a student received
type Status int

const (
	// StatusAdmitted means the student was placed into one of their stated preferences
	StatusAdmitted Status = iota

	// StatusAdjusted means the student was placed into a major outside the rounds they competed in
	StatusAdjusted

	// StatusUnassigned means no seat was available anywhere
	StatusUnassigned

	// StatusInvalidPreference means the student's code is not in the preference table
	StatusInvalidPreference
)

func (s Status) String() string {
	switch s {
	case StatusAdmitted:
		return "admitted"
	case StatusAdjusted:
		return "adjusted"
	case StatusUnassigned:
		return "unassigned"
	case StatusInvalidPreference:
		return "invalid preference"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the terminal decision for one student
type Outcome struct {
	Status Status

	// Major is set for StatusAdmitted and StatusAdjusted
	Major string

	// Choice is the 1-based position of Major in the student's preference list.
	// Zero unless Status is StatusAdmitted.
	Choice int
}

// String renders the outcome the way result files show it
func (o Outcome) String() string {
	switch o.Status {
	case StatusAdmitted:
		return o.Major
	case StatusAdjusted:
		return o.Major + " (adjusted)"
	default:
		return o.Status.String()
	}
}

// adjustedSuffixes are the tags recognised on adjusted placements in result files
var adjustedSuffixes = []string{" (adjusted)", "(adjusted)", "(调剂)", "（调剂）"}

// ParseOutcome reads an outcome back from its rendered form.
// Choice is left at zero because the rendered form does not carry it.
func ParseOutcome(s string) (Outcome, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Outcome{}, fmt.Errorf("empty outcome")
	case "unassigned", "未分配":
		return Outcome{Status: StatusUnassigned}, nil
	case "invalid preference", "无效志愿":
		return Outcome{Status: StatusInvalidPreference}, nil
	}
	for _, suffix := range adjustedSuffixes {
		if major, ok := strings.CutSuffix(s, suffix); ok {
			return Outcome{Status: StatusAdjusted, Major: strings.TrimSpace(major)}, nil
		}
	}
	return Outcome{Status: StatusAdmitted, Major: s}, nil
}

// Placed reports whether the outcome holds a seat
func (o Outcome) Placed() bool {
	return o.Status == StatusAdmitted || o.Status == StatusAdjusted
}

// Result pairs a student with their outcome
type Result struct {
	Student Student
	Outcome Outcome
}

// Quotas maps major name to seat count
type Quotas map[string]int

// Clone returns an independent copy
func (q Quotas) Clone() Quotas {
	if q == nil {
		return Quotas{}
	}
	return maps.Clone(q)
}

// Total returns the sum of all seats
func (q Quotas) Total() int {
	total := 0
	for _, seats := range q {
		total += seats
	}
	return total
}
