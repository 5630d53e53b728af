package admission

import (
	"fmt"
	"slices"
)

// MajorQuota is one major and its seat count
type MajorQuota struct {
	Name  string
	Quota int
}

// Config contains the configuration for creating a new Allocator
type Config struct {
	// Majors in fixed order; the order drives the adjustment pass and reports
	Majors []MajorQuota

	// Preferences maps each code to a full ordering of the majors
	Preferences map[PreferenceCode][]string

	// Priority selects whether Student.Priority is a rank or a score
	Priority Priority

	// Strategy to run; nil means SinglePass
	Strategy Strategy

	// FoldCase matches preference codes case-insensitively
	FoldCase bool
}

// Allocator assigns students to majors under fixed quotas.
// It is not safe for concurrent use.
type Allocator struct {
	table     *PreferenceTable
	priority  Priority
	strategy  Strategy
	original  Quotas
	remaining Quotas
}

// AllocationOutcome is the result of one Allocate call
type AllocationOutcome struct {
	// Results holds one entry per input student, in input order
	Results []Result

	// Remaining is a snapshot of the seats left after this call
	Remaining Quotas

	// Strategy is the name of the strategy that produced the results
	Strategy string
}

// New validates cfg and returns a fresh Allocator
func New(cfg Config) (*Allocator, error) {
	if !cfg.Priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority direction %q", ErrInvalidConfig, cfg.Priority)
	}

	majors := make([]string, 0, len(cfg.Majors))
	original := make(Quotas, len(cfg.Majors))
	for _, mq := range cfg.Majors {
		if mq.Quota < 0 {
			return nil, fmt.Errorf("%w: major %q has negative quota %d", ErrInvalidConfig, mq.Name, mq.Quota)
		}
		majors = append(majors, mq.Name)
		original[mq.Name] = mq.Quota
	}

	table, err := NewPreferenceTable(majors, cfg.Preferences, cfg.FoldCase)
	if err != nil {
		return nil, err
	}

	strategy := cfg.Strategy
	if strategy == nil {
		strategy = SinglePass{}
	}
	if err := strategy.validate(len(majors)); err != nil {
		return nil, err
	}

	return &Allocator{
		table:     table,
		priority:  cfg.Priority,
		strategy:  strategy,
		original:  original,
		remaining: original.Clone(),
	}, nil
}

// Allocate assigns every student an outcome, consuming seats from the remaining quotas.
//
// Students whose code is not in the table get StatusInvalidPreference and take no part
// in ordering. The rest are processed in priority order; ties keep input order.
func (a *Allocator) Allocate(students []Student) *AllocationOutcome {
	results := make([]Result, len(students))
	queue := make([]*candidate, 0, len(students))

	for i, student := range students {
		results[i].Student = student
		preferences, err := a.table.Resolve(student.Code)
		if err != nil {
			results[i].Outcome = Outcome{Status: StatusInvalidPreference}
			continue
		}
		queue = append(queue, &candidate{
			index:       i,
			student:     student,
			preferences: preferences,
		})
	}

	orderCandidates(a.priority, queue)

	ledger := &seatLedger{
		order:     a.table.Majors(),
		remaining: a.remaining,
	}
	a.strategy.assign(ledger, queue)

	for _, c := range queue {
		results[c.index].Outcome = c.outcome
	}

	return &AllocationOutcome{
		Results:   results,
		Remaining: a.RemainingQuotas(),
		Strategy:  a.strategy.Name(),
	}
}

// RemainingQuotas returns a copy of the seats currently left
func (a *Allocator) RemainingQuotas() Quotas {
	return a.remaining.Clone()
}

// OriginalQuotas returns a copy of the configured seats
func (a *Allocator) OriginalQuotas() Quotas {
	return a.original.Clone()
}

// Reset restores the remaining quotas to the configured values
func (a *Allocator) Reset() {
	a.remaining = a.original.Clone()
}

// Majors returns the majors in configured order
func (a *Allocator) Majors() []string {
	return a.table.Majors()
}

// Table returns the validated preference table
func (a *Allocator) Table() *PreferenceTable {
	return a.table
}

// Strategy returns the name of the configured strategy
func (a *Allocator) Strategy() string {
	return a.strategy.Name()
}

// Priority returns the configured priority direction
func (a *Allocator) Priority() Priority {
	return a.priority
}

// ProcessingOrder returns the indices of results in the order the allocator
// considered them. Invalid-preference results come last, in input order.
func (a *Allocator) ProcessingOrder(results []Result) []int {
	order := make([]int, 0, len(results))
	invalid := make([]int, 0)
	for i, r := range results {
		if r.Outcome.Status == StatusInvalidPreference {
			invalid = append(invalid, i)
			continue
		}
		order = append(order, i)
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return a.priority.compare(results[x].Student.Priority, results[y].Student.Priority)
	})
	return append(order, invalid...)
}
