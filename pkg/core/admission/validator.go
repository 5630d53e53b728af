package admission

import (
	"fmt"
	"slices"
)

// Violation describes one broken invariant in an allocation outcome
type Violation struct {
	Major       string
	StudentID   string
	Description string
}

func (v Violation) String() string {
	switch {
	case v.StudentID != "":
		return fmt.Sprintf("student %s: %s", v.StudentID, v.Description)
	case v.Major != "":
		return fmt.Sprintf("major %s: %s", v.Major, v.Description)
	default:
		return v.Description
	}
}

// ValidateOutcome checks an outcome against the seats that were available before the run.
// Returns an empty slice when every invariant holds.
//
// Checked:
//   - every placed student names a known major
//   - seats granted per major never exceed the seats available
//   - remaining seats equal available minus granted, and are never negative
//   - admitted students were placed into the major at their stated choice position
func ValidateOutcome(table *PreferenceTable, before Quotas, outcome *AllocationOutcome) []Violation {
	violations := []Violation{}
	granted := make(Quotas, len(before))

	for _, r := range outcome.Results {
		o := r.Outcome
		switch o.Status {
		case StatusAdmitted, StatusAdjusted:
			if _, ok := before[o.Major]; !ok {
				violations = append(violations, Violation{
					StudentID:   r.Student.ID,
					Description: fmt.Sprintf("placed into unknown major %q", o.Major),
				})
				continue
			}
			granted[o.Major]++
		case StatusUnassigned, StatusInvalidPreference:
			if o.Major != "" {
				violations = append(violations, Violation{
					StudentID:   r.Student.ID,
					Description: fmt.Sprintf("%s outcome carries major %q", o.Status, o.Major),
				})
			}
		default:
			violations = append(violations, Violation{
				StudentID:   r.Student.ID,
				Description: fmt.Sprintf("unknown outcome status %d", int(o.Status)),
			})
		}

		if o.Status == StatusAdmitted && table != nil {
			prefs, err := table.Resolve(r.Student.Code)
			if err != nil || o.Choice < 1 || o.Choice > len(prefs) || prefs[o.Choice-1] != o.Major {
				violations = append(violations, Violation{
					StudentID:   r.Student.ID,
					Description: fmt.Sprintf("admitted to %q which is not choice %d for code %q", o.Major, o.Choice, r.Student.Code),
				})
			}
		}
	}

	majors := make([]string, 0, len(before))
	for major := range before {
		majors = append(majors, major)
	}
	slices.Sort(majors)

	for _, major := range majors {
		available := before[major]
		if granted[major] > available {
			violations = append(violations, Violation{
				Major:       major,
				Description: fmt.Sprintf("granted %d seats but only %d were available", granted[major], available),
			})
		}
		remaining, ok := outcome.Remaining[major]
		if !ok {
			violations = append(violations, Violation{
				Major:       major,
				Description: "missing from remaining quotas",
			})
			continue
		}
		if remaining < 0 {
			violations = append(violations, Violation{
				Major:       major,
				Description: fmt.Sprintf("remaining quota is negative (%d)", remaining),
			})
		}
		if remaining != available-granted[major] {
			violations = append(violations, Violation{
				Major:       major,
				Description: fmt.Sprintf("remaining %d does not match %d available minus %d granted", remaining, available, granted[major]),
			})
		}
	}

	return violations
}
