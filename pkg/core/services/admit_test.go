package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/core/admission"
	"github.com/jakechorley/major-admission/pkg/db"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// mockSource implements StudentSource and ResultSink
type mockSource struct {
	records  []roster.Record
	listErr  error
	written  []roster.Record
	writeErr error
}

func (m *mockSource) ListStudents(ctx context.Context) ([]roster.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockSource) WriteResults(ctx context.Context, records []roster.Record) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = records
	return nil
}

func (m *mockSource) Describe() string { return "mock" }

// mockRunStore implements AdmitStore and RunHistoryStore
type mockRunStore struct {
	runs       []db.Run
	placements map[string][]db.Placement
	insertErr  error
}

func (m *mockRunStore) InsertRun(ctx context.Context, run *db.Run, placements []db.Placement) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.runs = append(m.runs, *run)
	if m.placements == nil {
		m.placements = make(map[string][]db.Placement)
	}
	m.placements[run.ID] = placements
	return nil
}

func (m *mockRunStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	return m.runs, nil
}

func (m *mockRunStore) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			return &m.runs[i], nil
		}
	}
	return nil, db.ErrRunNotFound
}

func (m *mockRunStore) GetPlacements(ctx context.Context, runID string) ([]db.Placement, error) {
	return m.placements[runID], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Majors: []config.MajorConfig{
			{Name: "X", Quota: 1},
			{Name: "Y", Quota: 1},
			{Name: "Z", Quota: 1},
		},
		Preferences: map[string][]string{
			"A": {"X", "Y", "Z"},
			"B": {"X", "Z", "Y"},
			"C": {"Y", "X", "Z"},
		},
		Priority: "score",
	}
}

func testRecords() []roster.Record {
	return []roster.Record{
		{Seq: "1", StudentID: "s1", Name: "Ann", Score: 90, Code: "A"},
		{Seq: "2", StudentID: "s2", Name: "Bo", Score: 80, Code: "B"},
		{Seq: "3", StudentID: "s3", Name: "Cy", Score: 70, Code: "C"},
		{Seq: "4", StudentID: "s4", Name: "Di", Score: 60, Code: "Q"},
	}
}

func TestAdmit_WritesAndSaves(t *testing.T) {
	source := &mockSource{records: testRecords()}
	store := &mockRunStore{}

	result, err := Admit(context.Background(), source, source, store, testConfig(), zap.NewNop(), AdmitOptions{Save: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Written)
	assert.True(t, result.Saved)
	assert.Equal(t, admission.StrategySinglePass, result.Strategy)
	assert.Equal(t, []string{"X", "Y", "Z"}, result.Majors)

	admitted := make([]string, len(source.written))
	for i, r := range source.written {
		admitted[i] = r.Admitted
	}
	assert.Equal(t, []string{"X", "Z", "Y", "invalid preference"}, admitted)
	assert.Equal(t, []int{0, 1, 2, 3}, result.Order, "Highest score first, invalid preference last")

	assert.Equal(t, 3, result.Summary.Placed)
	assert.Equal(t, 1, result.Summary.Invalid)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, "mock", run.Source)
	assert.Equal(t, "score", run.Priority)
	assert.Equal(t, 4, run.StudentCount)
	assert.Equal(t, map[string]int{"X": 1, "Y": 1, "Z": 1}, run.Quotas, "Stored quotas are the seats before the run")

	placements := store.placements[run.ID]
	require.Len(t, placements, 4)
	assert.Equal(t, "Ann", placements[0].Name)
	assert.Equal(t, "invalid preference", placements[3].Status)
}

func TestAdmit_StrategyOverride(t *testing.T) {
	source := &mockSource{records: testRecords()[:3]}

	result, err := Admit(context.Background(), source, nil, nil, testConfig(), zap.NewNop(),
		AdmitOptions{Strategy: admission.StrategyMultiRound})
	require.NoError(t, err)

	assert.Equal(t, admission.StrategyMultiRound, result.Strategy)
	assert.Equal(t, "X", result.Records[0].Admitted)
	assert.Equal(t, "Z", result.Records[1].Admitted)
	assert.Equal(t, "Y", result.Records[2].Admitted)
	assert.False(t, result.Written, "No sink means nothing is written")
}

func TestAdmit_DryRun(t *testing.T) {
	source := &mockSource{records: testRecords()}
	store := &mockRunStore{}

	result, err := Admit(context.Background(), source, source, store, testConfig(), zap.NewNop(),
		AdmitOptions{DryRun: true, Save: true})
	require.NoError(t, err)

	assert.False(t, result.Written)
	assert.False(t, result.Saved)
	assert.Nil(t, source.written)
	assert.Empty(t, store.runs)
	assert.Equal(t, "X", result.Records[0].Admitted, "Dry run still reports results")
}

func TestAdmit_SaveWithoutStore(t *testing.T) {
	source := &mockSource{records: testRecords()}

	_, err := Admit(context.Background(), source, nil, nil, testConfig(), zap.NewNop(), AdmitOptions{Save: true})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestAdmit_EmptyRoster(t *testing.T) {
	_, err := Admit(context.Background(), &mockSource{}, nil, nil, testConfig(), zap.NewNop(), AdmitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no students found")
}

func TestAdmit_SourceError(t *testing.T) {
	source := &mockSource{listErr: errors.New("sheet unavailable")}

	_, err := Admit(context.Background(), source, nil, nil, testConfig(), zap.NewNop(), AdmitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet unavailable")
}

func TestAdmit_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Preferences["D"] = []string{"X", "Y"}

	_, err := Admit(context.Background(), &mockSource{records: testRecords()}, nil, nil, cfg, zap.NewNop(), AdmitOptions{})
	assert.ErrorIs(t, err, admission.ErrInvalidConfig)
}

func TestAdmit_WriteError(t *testing.T) {
	source := &mockSource{records: testRecords(), writeErr: errors.New("disk full")}

	_, err := Admit(context.Background(), source, source, nil, testConfig(), zap.NewNop(), AdmitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write results")
}

func TestAdmit_ReportsDuplicates(t *testing.T) {
	records := testRecords()
	records[2].StudentID = "s1"

	result, err := Admit(context.Background(), &mockSource{records: records}, nil, nil, testConfig(), zap.NewNop(), AdmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, result.Duplicates)
}

func TestNewAllocator_UsesConfiguredStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.Strategy = admission.StrategyMultiRound
	cfg.Rounds = 1

	alloc, err := NewAllocator(cfg, "", 0)
	require.NoError(t, err)
	assert.Equal(t, admission.StrategyMultiRound, alloc.Strategy())

	alloc, err = NewAllocator(cfg, admission.StrategySinglePass, 0)
	require.NoError(t, err)
	assert.Equal(t, admission.StrategySinglePass, alloc.Strategy())

	_, err = NewAllocator(cfg, "lottery", 0)
	assert.ErrorIs(t, err, admission.ErrInvalidConfig)
}

func TestFindLatestRun(t *testing.T) {
	now := time.Now()
	runs := []db.Run{
		{ID: "old", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", CreatedAt: now},
		{ID: "older", CreatedAt: now.Add(-2 * time.Hour)},
	}

	assert.Equal(t, "new", findLatestRun(runs).ID)
	assert.Nil(t, findLatestRun(nil))
}
