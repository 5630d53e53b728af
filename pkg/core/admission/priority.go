package admission

import (
	"cmp"
	"math"
	"slices"
)

// Priority selects how Student.Priority is read
type Priority string

const (
	// PriorityRank treats lower values as higher priority (1st place goes first)
	PriorityRank Priority = "rank"

	// PriorityScore treats higher values as higher priority
	PriorityScore Priority = "score"
)

// IsValid reports whether p is a known direction
func (p Priority) IsValid() bool {
	return p == PriorityRank || p == PriorityScore
}

// compare orders a before b when it returns a negative number.
// NaN and infinities sort after every finite value in both directions.
func (p Priority) compare(a, b float64) int {
	aBad, bBad := !isFinite(a), !isFinite(b)
	switch {
	case aBad && bBad:
		return 0
	case aBad:
		return 1
	case bBad:
		return -1
	}
	if p == PriorityScore {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// orderCandidates sorts candidates into processing order.
// The sort is stable, so students with equal priority keep their input order.
func orderCandidates(p Priority, candidates []*candidate) {
	slices.SortStableFunc(candidates, func(a, b *candidate) int {
		return p.compare(a.student.Priority, b.student.Priority)
	})
}
