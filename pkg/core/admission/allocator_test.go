package admission

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPreferences covers X, Y, Z with a few orderings
var testPreferences = map[PreferenceCode][]string{
	"A": {"X", "Y", "Z"},
	"B": {"Y", "X", "Z"},
	"C": {"Z", "Y", "X"},
}

func newTestAllocator(t *testing.T, x, y, z int, strategy Strategy) *Allocator {
	t.Helper()
	a, err := New(Config{
		Majors: []MajorQuota{
			{Name: "X", Quota: x},
			{Name: "Y", Quota: y},
			{Name: "Z", Quota: z},
		},
		Preferences: testPreferences,
		Priority:    PriorityRank,
		Strategy:    strategy,
	})
	require.NoError(t, err)
	return a
}

func outcomeStrings(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Outcome.String()
	}
	return out
}

func TestAllocate_SingleSeatGoesToHigherPriority(t *testing.T) {
	for _, strategy := range []Strategy{SinglePass{}, MultiRound{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			a := newTestAllocator(t, 1, 0, 0, strategy)

			outcome := a.Allocate([]Student{
				{ID: "p2", Priority: 2, Code: "A"},
				{ID: "p1", Priority: 1, Code: "A"},
			})

			require.Len(t, outcome.Results, 2)
			assert.Equal(t, "p2", outcome.Results[0].Student.ID, "Results should keep input order")
			assert.Equal(t, StatusUnassigned, outcome.Results[0].Outcome.Status)
			assert.Equal(t, Outcome{Status: StatusAdmitted, Major: "X", Choice: 1}, outcome.Results[1].Outcome)
			assert.Equal(t, Quotas{"X": 0, "Y": 0, "Z": 0}, outcome.Remaining)
		})
	}
}

func TestAllocate_SinglePassEachStudentTakesNextOpenPreference(t *testing.T) {
	a := newTestAllocator(t, 1, 1, 1, SinglePass{})

	outcome := a.Allocate([]Student{
		{ID: "s1", Priority: 1, Code: "A"},
		{ID: "s2", Priority: 2, Code: "A"},
		{ID: "s3", Priority: 3, Code: "A"},
	})

	assert.Equal(t, []string{"X", "Y", "Z"}, outcomeStrings(outcome.Results))
	assert.Equal(t, 1, outcome.Results[0].Outcome.Choice)
	assert.Equal(t, 2, outcome.Results[1].Outcome.Choice)
	assert.Equal(t, 3, outcome.Results[2].Outcome.Choice)
	assert.Equal(t, Quotas{"X": 0, "Y": 0, "Z": 0}, a.RemainingQuotas())
}

func TestAllocate_MultiRoundMatchesSinglePassWithoutContention(t *testing.T) {
	a := newTestAllocator(t, 1, 1, 1, MultiRound{})

	outcome := a.Allocate([]Student{
		{ID: "s1", Priority: 1, Code: "A"},
		{ID: "s2", Priority: 2, Code: "A"},
		{ID: "s3", Priority: 3, Code: "A"},
	})

	assert.Equal(t, []string{"X", "Y", "Z"}, outcomeStrings(outcome.Results))
}

func TestNew_RejectsIncompletePreferenceList(t *testing.T) {
	_, err := New(Config{
		Majors: []MajorQuota{
			{Name: "X", Quota: 0},
			{Name: "Y", Quota: 0},
			{Name: "Z", Quota: 1},
		},
		Preferences: map[PreferenceCode][]string{
			"A": {"X", "Y"},
		},
		Priority: PriorityRank,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "lists 2 majors, want 3")
}

func TestAllocate_AllQuotasZeroLeavesEveryoneUnassigned(t *testing.T) {
	for _, strategy := range []Strategy{SinglePass{}, MultiRound{}, MultiRound{Rounds: 1}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			a := newTestAllocator(t, 0, 0, 0, strategy)

			outcome := a.Allocate([]Student{
				{ID: "s1", Priority: 1, Code: "A"},
				{ID: "s2", Priority: 2, Code: "B"},
				{ID: "s3", Priority: 3, Code: "C"},
			})

			for _, r := range outcome.Results {
				assert.Equal(t, StatusUnassigned, r.Outcome.Status, "student %s", r.Student.ID)
			}
			assert.Equal(t, a.OriginalQuotas(), outcome.Remaining)
		})
	}
}

func TestAllocate_StrategiesDivergeUnderContention(t *testing.T) {
	students := []Student{
		{ID: "s1", Priority: 1, Code: "A"},
		{ID: "s2", Priority: 2, Code: "A"},
		{ID: "s3", Priority: 3, Code: "B"},
	}

	single := newTestAllocator(t, 1, 1, 1, SinglePass{}).Allocate(students)
	multi := newTestAllocator(t, 1, 1, 1, MultiRound{}).Allocate(students)

	// s2 takes Y before s3 gets a look at it
	assert.Equal(t, []string{"X", "Y", "Z"}, outcomeStrings(single.Results))

	// s3's first choice Y is granted in round 1, pushing s2 to its third choice
	assert.Equal(t, []string{"X", "Z", "Y"}, outcomeStrings(multi.Results))
	assert.Equal(t, 3, multi.Results[1].Outcome.Choice)
	assert.Equal(t, 1, multi.Results[2].Outcome.Choice)
}

func TestAllocate_MultiRoundAdjustmentPass(t *testing.T) {
	a := newTestAllocator(t, 1, 1, 0, MultiRound{Rounds: 1})

	outcome := a.Allocate([]Student{
		{ID: "s1", Priority: 1, Code: "A"},
		{ID: "s2", Priority: 2, Code: "A"},
		{ID: "s3", Priority: 3, Code: "C"},
	})

	assert.Equal(t, Outcome{Status: StatusAdmitted, Major: "X", Choice: 1}, outcome.Results[0].Outcome)
	assert.Equal(t, Outcome{Status: StatusAdjusted, Major: "Y"}, outcome.Results[1].Outcome)
	assert.Equal(t, "Y (adjusted)", outcome.Results[1].Outcome.String())
	assert.Equal(t, StatusUnassigned, outcome.Results[2].Outcome.Status)
}

func TestAllocate_MultiRoundAdjustmentFollowsMajorOrder(t *testing.T) {
	a := newTestAllocator(t, 0, 2, 2, MultiRound{Rounds: 1})

	outcome := a.Allocate([]Student{
		{ID: "s1", Priority: 1, Code: "A"}, // X first, no seats
	})

	assert.Equal(t, Outcome{Status: StatusAdjusted, Major: "Y"}, outcome.Results[0].Outcome)
}

func TestAllocate_InvalidPreferenceTaggedAndSkipped(t *testing.T) {
	a := newTestAllocator(t, 1, 0, 0, SinglePass{})

	outcome := a.Allocate([]Student{
		{ID: "bad", Priority: 1, Code: "Q"},
		{ID: "good", Priority: 2, Code: "A"},
	})

	assert.Equal(t, StatusInvalidPreference, outcome.Results[0].Outcome.Status)
	assert.Equal(t, "invalid preference", outcome.Results[0].Outcome.String())
	assert.Equal(t, "X", outcome.Results[1].Outcome.Major, "Invalid student must not consume a seat")
}

func TestAllocate_CaseMismatchIsInvalidWithoutFoldCase(t *testing.T) {
	a := newTestAllocator(t, 1, 1, 1, SinglePass{})

	outcome := a.Allocate([]Student{{ID: "s1", Priority: 1, Code: "a"}})

	assert.Equal(t, StatusInvalidPreference, outcome.Results[0].Outcome.Status)
}

func TestAllocate_FoldCaseResolvesLowercase(t *testing.T) {
	a, err := New(Config{
		Majors:      []MajorQuota{{Name: "X", Quota: 1}, {Name: "Y", Quota: 1}, {Name: "Z", Quota: 1}},
		Preferences: testPreferences,
		Priority:    PriorityRank,
		FoldCase:    true,
	})
	require.NoError(t, err)

	outcome := a.Allocate([]Student{{ID: "s1", Priority: 1, Code: "c"}})

	assert.Equal(t, "Z", outcome.Results[0].Outcome.Major)
}

func TestAllocate_ScorePriorityHighestFirst(t *testing.T) {
	a, err := New(Config{
		Majors:      []MajorQuota{{Name: "X", Quota: 1}, {Name: "Y", Quota: 0}, {Name: "Z", Quota: 0}},
		Preferences: testPreferences,
		Priority:    PriorityScore,
	})
	require.NoError(t, err)

	outcome := a.Allocate([]Student{
		{ID: "low", Priority: 81.5, Code: "A"},
		{ID: "high", Priority: 92, Code: "A"},
	})

	assert.Equal(t, StatusUnassigned, outcome.Results[0].Outcome.Status)
	assert.Equal(t, "X", outcome.Results[1].Outcome.Major)
}

func TestAllocate_TiesKeepInputOrder(t *testing.T) {
	a := newTestAllocator(t, 1, 1, 0, SinglePass{})

	outcome := a.Allocate([]Student{
		{ID: "first", Priority: 5, Code: "A"},
		{ID: "second", Priority: 5, Code: "A"},
	})

	assert.Equal(t, "X", outcome.Results[0].Outcome.Major)
	assert.Equal(t, "Y", outcome.Results[1].Outcome.Major)
}

func TestAllocate_ConsumedStateCarriesOver(t *testing.T) {
	a := newTestAllocator(t, 1, 0, 0, SinglePass{})
	students := []Student{{ID: "s1", Priority: 1, Code: "A"}}

	first := a.Allocate(students)
	second := a.Allocate(students)

	assert.Equal(t, "X", first.Results[0].Outcome.Major)
	assert.Equal(t, StatusUnassigned, second.Results[0].Outcome.Status)
}

func TestReset_MatchesFreshAllocator(t *testing.T) {
	students := []Student{
		{ID: "s1", Priority: 3, Code: "B"},
		{ID: "s2", Priority: 1, Code: "A"},
		{ID: "s3", Priority: 2, Code: "C"},
		{ID: "s4", Priority: 4, Code: "A"},
	}

	for _, strategy := range []Strategy{SinglePass{}, MultiRound{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			reused := newTestAllocator(t, 1, 1, 1, strategy)
			reused.Allocate(students)
			reused.Reset()
			assert.Equal(t, reused.OriginalQuotas(), reused.RemainingQuotas())

			got := reused.Allocate(students)
			want := newTestAllocator(t, 1, 1, 1, strategy).Allocate(students)

			assert.Equal(t, want, got)
		})
	}
}

func TestRemainingQuotas_SnapshotIsolated(t *testing.T) {
	a := newTestAllocator(t, 2, 1, 1, SinglePass{})

	snapshot := a.RemainingQuotas()
	snapshot["X"] = 100
	delete(snapshot, "Y")

	assert.Equal(t, Quotas{"X": 2, "Y": 1, "Z": 1}, a.RemainingQuotas())

	outcome := a.Allocate([]Student{{ID: "s1", Priority: 1, Code: "A"}})
	outcome.Remaining["X"] = 50
	assert.Equal(t, 1, a.RemainingQuotas()["X"])
}

func TestRemainingQuotas_Idempotent(t *testing.T) {
	a := newTestAllocator(t, 2, 1, 1, SinglePass{})
	a.Allocate([]Student{{ID: "s1", Priority: 1, Code: "B"}})

	assert.Equal(t, a.RemainingQuotas(), a.RemainingQuotas())
}

func TestNew_InvalidConfigs(t *testing.T) {
	base := func() Config {
		return Config{
			Majors:      []MajorQuota{{Name: "X", Quota: 1}, {Name: "Y", Quota: 1}, {Name: "Z", Quota: 1}},
			Preferences: testPreferences,
			Priority:    PriorityRank,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown priority", func(c *Config) { c.Priority = "height" }, "unknown priority"},
		{"negative quota", func(c *Config) { c.Majors[1].Quota = -1 }, "negative quota"},
		{"no majors", func(c *Config) { c.Majors = nil }, "no majors"},
		{"duplicate major", func(c *Config) { c.Majors[2].Name = "X" }, "duplicate major"},
		{"empty table", func(c *Config) { c.Preferences = nil }, "preference table is empty"},
		{"major without quota", func(c *Config) {
			c.Preferences = map[PreferenceCode][]string{"A": {"X", "Y", "W"}}
		}, "has no quota"},
		{"repeated major", func(c *Config) {
			c.Preferences = map[PreferenceCode][]string{"A": {"X", "X", "Y"}}
		}, "more than once"},
		{"too many rounds", func(c *Config) { c.Strategy = MultiRound{Rounds: 4} }, "rounds"},
		{"negative rounds", func(c *Config) { c.Strategy = MultiRound{Rounds: -1} }, "rounds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProcessingOrder(t *testing.T) {
	a := newTestAllocator(t, 3, 3, 3, SinglePass{})
	outcome := a.Allocate([]Student{
		{ID: "c", Priority: 3, Code: "A"},
		{ID: "bad", Priority: 0, Code: "?"},
		{ID: "a", Priority: 1, Code: "A"},
		{ID: "b", Priority: 2, Code: "A"},
	})

	assert.Equal(t, []int{2, 3, 0, 1}, a.ProcessingOrder(outcome.Results))
}

func TestAllocate_NonFinitePrioritySortsLast(t *testing.T) {
	for _, priority := range []Priority{PriorityRank, PriorityScore} {
		for _, strategy := range []Strategy{SinglePass{}, MultiRound{}} {
			t.Run(string(priority)+"/"+strategy.Name(), func(t *testing.T) {
				a, err := New(Config{
					Majors:      []MajorQuota{{Name: "X", Quota: 1}, {Name: "Y", Quota: 0}, {Name: "Z", Quota: 0}},
					Preferences: testPreferences,
					Priority:    priority,
					Strategy:    strategy,
				})
				require.NoError(t, err)

				outcome := a.Allocate([]Student{
					{ID: "top", Priority: 1, Code: "A"},
					{ID: "junk", Priority: math.NaN(), Code: "A"},
				})

				assert.Equal(t, Outcome{Status: StatusAdmitted, Major: "X", Choice: 1}, outcome.Results[0].Outcome)
				assert.Equal(t, StatusUnassigned, outcome.Results[1].Outcome.Status)
			})
		}
	}
}

func TestPriorityCompare_NonFiniteAfterFinite(t *testing.T) {
	nonFinite := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, p := range []Priority{PriorityRank, PriorityScore} {
		for _, v := range nonFinite {
			assert.Positive(t, p.compare(v, 100), "%s: %v should follow a finite value", p, v)
			assert.Negative(t, p.compare(100, v), "%s: finite value should precede %v", p, v)
			for _, w := range nonFinite {
				assert.Zero(t, p.compare(v, w), "%s: %v and %v tie", p, v, w)
			}
		}
	}
}

func TestProcessingOrder_NonFiniteLastBeforeInvalid(t *testing.T) {
	a := newTestAllocator(t, 3, 3, 3, SinglePass{})
	outcome := a.Allocate([]Student{
		{ID: "inf", Priority: math.Inf(-1), Code: "A"},
		{ID: "bad", Priority: 0, Code: "?"},
		{ID: "nan", Priority: math.NaN(), Code: "A"},
		{ID: "a", Priority: 1, Code: "A"},
	})

	assert.Equal(t, []int{3, 0, 2, 1}, a.ProcessingOrder(outcome.Results))
}

// TestAllocate_InvariantsHoldOnRandomInput checks quota bounds and one outcome per
// student across many generated runs
func TestAllocate_InvariantsHoldOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	codes := []PreferenceCode{"A", "B", "C", "?"}

	for run := 0; run < 200; run++ {
		x, y, z := rng.IntN(4), rng.IntN(4), rng.IntN(4)
		students := make([]Student, rng.IntN(12))
		for i := range students {
			students[i] = Student{
				ID:       string(rune('a' + i)),
				Priority: float64(rng.IntN(5)),
				Code:     codes[rng.IntN(len(codes))],
			}
		}

		var strategy Strategy = SinglePass{}
		if run%2 == 1 {
			strategy = MultiRound{Rounds: 1 + rng.IntN(3)}
		}
		a := newTestAllocator(t, x, y, z, strategy)
		before := a.RemainingQuotas()

		outcome := a.Allocate(students)

		require.Len(t, outcome.Results, len(students))
		violations := ValidateOutcome(a.Table(), before, outcome)
		require.Empty(t, violations, "run %d (%s)", run, strategy.Name())

		placed := 0
		for _, r := range outcome.Results {
			if r.Outcome.Placed() {
				placed++
			}
		}
		assert.Equal(t, before.Total()-outcome.Remaining.Total(), placed, "run %d", run)
	}
}
