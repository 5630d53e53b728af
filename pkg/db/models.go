package db

import (
	"time"

	"github.com/jakechorley/major-admission/pkg/core/admission"
)

// Run is one recorded allocation over a roster
type Run struct {
	ID           string
	CreatedAt    time.Time
	Source       string
	Strategy     string
	Priority     string
	StudentCount int
	// Quotas are the seats configured before the run
	Quotas map[string]int
}

// Placement is the stored outcome for one student in a run
type Placement struct {
	RunID     string
	StudentID string
	Name      string
	Priority  float64
	Code      string
	// Outcome is the rendered outcome as written to result files
	Outcome string
	// Major is empty unless the student holds a seat
	Major  string
	Status string
}

// NewPlacements builds placements for runID from results in input order.
// names maps student IDs to display names and may be nil.
func NewPlacements(runID string, results []admission.Result, names map[string]string) []Placement {
	placements := make([]Placement, len(results))
	for i, r := range results {
		placements[i] = Placement{
			RunID:     runID,
			StudentID: r.Student.ID,
			Name:      names[r.Student.ID],
			Priority:  r.Student.Priority,
			Code:      string(r.Student.Code),
			Outcome:   r.Outcome.String(),
			Major:     r.Outcome.Major,
			Status:    r.Outcome.Status.String(),
		}
	}
	return placements
}

// CountByStatus tallies placements by stored status
func CountByStatus(placements []Placement) map[string]int {
	counts := make(map[string]int)
	for _, p := range placements {
		counts[p.Status]++
	}
	return counts
}
