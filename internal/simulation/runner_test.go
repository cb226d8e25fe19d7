package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/events"
	"github.com/Sicakyuz/SCM-simulation/internal/idhash"
	"github.com/Sicakyuz/SCM-simulation/internal/observability"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
	"github.com/Sicakyuz/SCM-simulation/internal/storage/memory"
)

// scriptedSource returns rolls and choices in order, then repeats the last one.
type scriptedSource struct {
	rolls   []float64
	choices []int
	err     error
}

func (s *scriptedSource) Float64() (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.rolls[0]
	if len(s.rolls) > 1 {
		s.rolls = s.rolls[1:]
	}
	return v, nil
}

func (s *scriptedSource) IntN(int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.choices[0]
	if len(s.choices) > 1 {
		s.choices = s.choices[1:]
	}
	return v, nil
}

func quietSource() *scriptedSource {
	return &scriptedSource{rolls: []float64{0.99}, choices: []int{0}}
}

func newTestRunner(src events.RandomSource, opts RunnerOptions) *Runner {
	opts.Events = events.NewGenerator(src, zerolog.Nop())
	opts.Logger = zerolog.Nop()
	return NewRunner(opts)
}

func TestSimulate_LengthMatchesDecisions(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	for _, n := range []int{0, 1, 4, domain.MaxPeriods} {
		periods := r.Simulate(domain.ScenarioStableMarket, domain.DefaultDecisions(n))
		assert.Len(t, periods, n)
	}
}

func TestSimulate_DeterministicWithoutEvents(t *testing.T) {
	decisions := []domain.PeriodDecision{
		decision(1, 10, 120, domain.TransportSea, 3, 5),
		decision(2, -20, 80, domain.TransportAir, 1, 15),
		decision(3, 0, 100, domain.TransportMixed, 2, 0),
	}

	first := newTestRunner(quietSource(), RunnerOptions{}).Simulate(domain.ScenarioSupplyDisruption, decisions)
	second := newTestRunner(quietSource(), RunnerOptions{}).Simulate(domain.ScenarioSupplyDisruption, decisions)

	assert.Equal(t, first, second)
}

func TestSimulate_DeterministicWithSeededSource(t *testing.T) {
	decisions := domain.DefaultDecisions(domain.MaxPeriods)

	a := newTestRunner(events.NewMathSource(99), RunnerOptions{}).Simulate(domain.ScenarioIncreasingDemand, decisions)
	b := newTestRunner(events.NewMathSource(99), RunnerOptions{}).Simulate(domain.ScenarioIncreasingDemand, decisions)

	assert.Equal(t, a, b)
}

func TestSimulate_DemandCompoundsInInputOrder(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})
	decisions := []domain.PeriodDecision{
		domain.DefaultDecision(3),
		domain.DefaultDecision(1),
		domain.DefaultDecision(3),
	}

	periods := r.Simulate(domain.ScenarioIncreasingDemand, decisions)
	require.Len(t, periods, 3)

	// Periods are not sorted or deduplicated
	assert.Equal(t, []int{3, 1, 3}, []int{periods[0].Period, periods[1].Period, periods[2].Period})
	assert.InDelta(t, 1050.0, periods[0].Demand, 1e-9)
	assert.InDelta(t, 1102.5, periods[1].Demand, 1e-9)
	assert.InDelta(t, 1157.625, periods[2].Demand, 1e-9)
}

func TestSimulate_DisruptionFollowsPeriodLabel(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	periods := r.Simulate(domain.ScenarioSupplyDisruption, domain.DefaultDecisions(5))
	for _, p := range periods {
		assert.Equal(t, p.Period == 3, p.Disrupted, "period %d", p.Period)
	}
}

func TestSimulate_ForcedStrikeAtPeriodTwo(t *testing.T) {
	decisions := domain.DefaultDecisions(3)

	baseline := newTestRunner(quietSource(), RunnerOptions{}).Simulate(domain.ScenarioStableMarket, decisions)

	src := &scriptedSource{rolls: []float64{0.99, 0.0, 0.99}, choices: []int{0}}
	periods := newTestRunner(src, RunnerOptions{}).Simulate(domain.ScenarioStableMarket, decisions)

	require.Len(t, periods, 3)
	assert.False(t, periods[0].Event.Occurred)
	assert.True(t, periods[1].Event.Occurred)
	assert.Equal(t, domain.EventTransportationStrike, periods[1].Event.Name)
	assert.InDelta(t, baseline[1].LeadTime+5, periods[1].LeadTime, 1e-9)
	assert.False(t, periods[2].Event.Occurred)
	assert.Equal(t, baseline[2].LeadTime, periods[2].LeadTime)
}

func TestSimulate_SourceFailureMeansNoEvents(t *testing.T) {
	src := &scriptedSource{err: errors.New("entropy exhausted")}
	periods := newTestRunner(src, RunnerOptions{}).Simulate(domain.ScenarioStableMarket, domain.DefaultDecisions(4))

	require.Len(t, periods, 4)
	for _, p := range periods {
		assert.False(t, p.Event.Occurred)
		assert.Empty(t, p.Event.Effects)
	}
}

func TestSimulate_UnknownScenarioUsesNeutralDefaults(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	unknown := r.Simulate("Alien Invasion", domain.DefaultDecisions(3))
	stableRun := r.Simulate(domain.ScenarioStableMarket, domain.DefaultDecisions(3))

	assert.Equal(t, stableRun, unknown)
}

func TestSimulateEach_EmitsEveryPeriod(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	var emitted []int
	periods := r.SimulateEach(domain.ScenarioStableMarket, domain.DefaultDecisions(3), func(m *domain.PeriodMetrics) {
		emitted = append(emitted, m.Period)
	})

	assert.Len(t, periods, 3)
	assert.Equal(t, []int{1, 2, 3}, emitted)
}

func TestRun_RejectsEmptyDecisions(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	_, err := r.Run(context.Background(), RunRequest{Scenario: domain.ScenarioStableMarket})
	assert.ErrorIs(t, err, ErrNoDecisions)
}

func TestRun_BuildsRunRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 123_456_789, time.UTC)
	r := newTestRunner(quietSource(), RunnerOptions{}).WithClock(func() time.Time { return now })

	req := RunRequest{
		StudentName:   "Ada",
		StudentNumber: "S1",
		Scenario:      domain.ScenarioPriceCompetition,
		Decisions:     domain.DefaultDecisions(2),
	}
	run, err := r.Run(context.Background(), req)
	require.NoError(t, err)

	truncated := now.Truncate(time.Millisecond)
	assert.Equal(t, truncated, run.CreatedAt)
	assert.Equal(t, idhash.ComputeRunID("S1", domain.ScenarioPriceCompetition, truncated.UnixMilli()), run.RunID)
	assert.Equal(t, "Ada", run.StudentName)
	assert.Equal(t, req.Decisions, run.Decisions)
	assert.Len(t, run.Periods, 2)

	// The run keeps its own copy of the decisions
	req.Decisions[0].InventoryLevel = 1
	assert.Equal(t, 100, run.Decisions[0].InventoryLevel)
}

func TestRun_SaveWritesBothStores(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunStore()
	periodStore := memory.NewPeriodMetricsStore()
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)

	r := newTestRunner(quietSource(), RunnerOptions{
		RunStore:    runStore,
		PeriodStore: periodStore,
		Metrics:     m,
	})

	run, err := r.Run(ctx, RunRequest{
		StudentNumber: "S1",
		Scenario:      domain.ScenarioSupplyDisruption,
		Decisions:     domain.DefaultDecisions(4),
		Save:          true,
	})
	require.NoError(t, err)

	saved, err := runStore.GetByID(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, saved.Periods, 4)

	rows, err := periodStore.GetByRunID(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(domain.ScenarioSupplyDisruption)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PeriodsSimulated.WithLabelValues(domain.ScenarioSupplyDisruption)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Disruptions))
}

func TestRun_WithoutSaveLeavesStoresEmpty(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunStore()
	r := newTestRunner(quietSource(), RunnerOptions{RunStore: runStore})

	_, err := r.Run(ctx, RunRequest{Scenario: domain.ScenarioStableMarket, Decisions: domain.DefaultDecisions(1)})
	require.NoError(t, err)

	all, err := runStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSave_Errors(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(quietSource(), RunnerOptions{RunStore: memory.NewRunStore()})

	assert.ErrorIs(t, r.Save(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, r.Save(ctx, &domain.SimulationRun{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, r.Save(ctx, &domain.SimulationRun{RunID: "x"}), ErrEmptyRun)

	run, err := r.Run(ctx, RunRequest{Scenario: domain.ScenarioStableMarket, Decisions: domain.DefaultDecisions(1)})
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, run))

	err = r.Save(ctx, run)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

// failingPeriodStore rejects every write.
type failingPeriodStore struct {
	storage.PeriodMetricsStore
}

func (failingPeriodStore) InsertBulk(context.Context, []*domain.PeriodRecord) error {
	return errors.New("clickhouse unavailable")
}

func TestSave_PeriodStoreFailureKeepsRun(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunStore()
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)

	r := newTestRunner(quietSource(), RunnerOptions{
		RunStore:    runStore,
		PeriodStore: failingPeriodStore{},
		Metrics:     m,
	})

	run, err := r.Run(ctx, RunRequest{
		StudentNumber: "S1",
		Scenario:      domain.ScenarioStableMarket,
		Decisions:     domain.DefaultDecisions(2),
		Save:          true,
	})
	require.NoError(t, err)

	saved, err := runStore.GetByID(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, saved.Periods, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpErrors.WithLabelValues("period_metrics", "insert_bulk")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StoreOpErrors.WithLabelValues("runs", "insert")))
}

func TestSave_NoStoresConfigured(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})

	run := &domain.SimulationRun{RunID: "x", Periods: []*domain.PeriodMetrics{{Period: 1}}}
	assert.NoError(t, r.Save(context.Background(), run))
}

func TestRun_FullDiscountKeepsRunning(t *testing.T) {
	r := newTestRunner(quietSource(), RunnerOptions{})
	decisions := domain.DefaultDecisions(3)
	decisions[1].PricingDiscount = 100

	run, err := r.Run(context.Background(), RunRequest{Scenario: domain.ScenarioStableMarket, Decisions: decisions})
	require.NoError(t, err)

	require.Len(t, run.Periods, 3)
	assert.True(t, math.IsNaN(run.Periods[1].ProfitMargin))
	assert.False(t, math.IsNaN(run.Periods[2].ProfitMargin))
}
