package admission

import "fmt"

// Strategy names accepted by ParseStrategy
const (
	StrategySinglePass = "single-pass"
	StrategyMultiRound = "multi-round"
)

// Strategy decides how ordered candidates are matched to seats
type Strategy interface {
	// Name returns the identifier used in config and reports
	Name() string

	// validate checks the strategy against the number of majors
	validate(majorCount int) error

	// assign sets an outcome on every candidate in queue, consuming seats.
	// queue is already in processing order.
	assign(seats *seatLedger, queue []*candidate)
}

// ParseStrategy builds a Strategy from its config name.
// rounds is only used by the multi-round strategy; zero means one round per major.
func ParseStrategy(name string, rounds int) (Strategy, error) {
	switch name {
	case "", StrategySinglePass:
		return SinglePass{}, nil
	case StrategyMultiRound:
		return MultiRound{Rounds: rounds}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
	}
}

// candidate is a student whose preference code resolved, waiting for a seat
type candidate struct {
	index       int
	student     Student
	preferences []string
	outcome     Outcome
	decided     bool
}

func (c *candidate) admit(major string, choice int) {
	c.outcome = Outcome{Status: StatusAdmitted, Major: major, Choice: choice}
	c.decided = true
}

// seatLedger tracks remaining seats during one Allocate call
type seatLedger struct {
	order     []string
	remaining Quotas
}

// take claims one seat in major if any is left
func (l *seatLedger) take(major string) bool {
	if l.remaining[major] <= 0 {
		return false
	}
	l.remaining[major]--
	return true
}

// takeFirstOpen claims a seat in the first major, in configured order, that has one
func (l *seatLedger) takeFirstOpen() (string, bool) {
	for _, major := range l.order {
		if l.take(major) {
			return major, true
		}
	}
	return "", false
}

// SinglePass walks each student's full preference list in priority order.
// A student takes the first listed major with a seat left; otherwise they are unassigned.
type SinglePass struct{}

func (SinglePass) Name() string { return StrategySinglePass }

func (SinglePass) validate(int) error { return nil }

func (SinglePass) assign(seats *seatLedger, queue []*candidate) {
	for _, c := range queue {
		for i, major := range c.preferences {
			if seats.take(major) {
				c.admit(major, i+1)
				break
			}
		}
		if !c.decided {
			c.outcome = Outcome{Status: StatusUnassigned}
			c.decided = true
		}
	}
}

// MultiRound runs one pass per preference position. In round r every still-unplaced
// student, in priority order, tries only their r-th choice. Students left after the
// last round go through an adjustment pass that hands out any remaining seat in
// configured major order.
type MultiRound struct {
	// Rounds is the number of preference positions considered; zero means all of them
	Rounds int
}

func (MultiRound) Name() string { return StrategyMultiRound }

func (m MultiRound) validate(majorCount int) error {
	if m.Rounds < 0 || m.Rounds > majorCount {
		return fmt.Errorf("%w: multi-round rounds must be between 0 (all) and %d, got %d", ErrInvalidConfig, majorCount, m.Rounds)
	}
	return nil
}

func (m MultiRound) rounds(majorCount int) int {
	if m.Rounds == 0 {
		return majorCount
	}
	return m.Rounds
}

func (m MultiRound) assign(seats *seatLedger, queue []*candidate) {
	if len(queue) == 0 {
		return
	}
	rounds := m.rounds(len(queue[0].preferences))

	for round := 0; round < rounds; round++ {
		for _, c := range queue {
			if c.decided {
				continue
			}
			major := c.preferences[round]
			if seats.take(major) {
				c.admit(major, round+1)
			}
		}
	}

	// Adjustment pass
	for _, c := range queue {
		if c.decided {
			continue
		}
		if major, ok := seats.takeFirstOpen(); ok {
			c.outcome = Outcome{Status: StatusAdjusted, Major: major}
		} else {
			c.outcome = Outcome{Status: StatusUnassigned}
		}
		c.decided = true
	}
}
