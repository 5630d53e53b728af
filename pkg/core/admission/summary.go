package admission

// MajorSummary holds admission counts for one major
type MajorSummary struct {
	Major     string
	Quota     int
	Total     int // Admitted + Adjusted
	Admitted  int // placed through a stated preference
	Adjusted  int
	FirstPick int // admitted through their first choice
	Remaining int
}

// Summary aggregates an allocation outcome
type Summary struct {
	Students   int
	Placed     int
	Unassigned int
	Invalid    int
	Majors     []MajorSummary
}

// Summarize counts outcomes per major, listing majors in the given order
func Summarize(majors []string, original Quotas, outcome *AllocationOutcome) Summary {
	summary := Summary{
		Students: len(outcome.Results),
		Majors:   make([]MajorSummary, len(majors)),
	}

	index := make(map[string]int, len(majors))
	for i, major := range majors {
		index[major] = i
		summary.Majors[i] = MajorSummary{
			Major:     major,
			Quota:     original[major],
			Remaining: outcome.Remaining[major],
		}
	}

	for _, r := range outcome.Results {
		switch r.Outcome.Status {
		case StatusUnassigned:
			summary.Unassigned++
			continue
		case StatusInvalidPreference:
			summary.Invalid++
			continue
		}

		summary.Placed++
		i, ok := index[r.Outcome.Major]
		if !ok {
			continue
		}
		ms := &summary.Majors[i]
		ms.Total++
		if r.Outcome.Status == StatusAdjusted {
			ms.Adjusted++
			continue
		}
		ms.Admitted++
		if r.Outcome.Choice == 1 {
			ms.FirstPick++
		}
	}

	return summary
}

// Adjustment is a student whose placement differs from their first choice
type Adjustment struct {
	Student     Student
	FirstChoice string
	Outcome     Outcome
}

// FindAdjustments lists students who hold a seat outside their first choice,
// in the order of results
func FindAdjustments(table *PreferenceTable, results []Result) []Adjustment {
	adjustments := []Adjustment{}
	for _, r := range results {
		if !r.Outcome.Placed() {
			continue
		}
		prefs, err := table.Resolve(r.Student.Code)
		if err != nil {
			continue
		}
		if prefs[0] == r.Outcome.Major && r.Outcome.Status == StatusAdmitted {
			continue
		}
		adjustments = append(adjustments, Adjustment{
			Student:     r.Student,
			FirstChoice: prefs[0],
			Outcome:     r.Outcome,
		})
	}
	return adjustments
}
