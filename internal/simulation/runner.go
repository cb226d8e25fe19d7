package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/events"
	"github.com/Sicakyuz/SCM-simulation/internal/idhash"
	"github.com/Sicakyuz/SCM-simulation/internal/observability"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// Runner errors
var (
	ErrNoDecisions = errors.New("at least one period decision is required")
	ErrEmptyRun    = errors.New("run has no periods")
)

// Runner executes simulations and, on request, saves completed runs.
// Simulate holds no state between calls.
type Runner struct {
	events      *events.Generator
	runStore    storage.RunStore
	periodStore storage.PeriodMetricsStore
	metrics     *observability.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
// Stores and Metrics are optional.
type RunnerOptions struct {
	Events      *events.Generator
	RunStore    storage.RunStore
	PeriodStore storage.PeriodMetricsStore
	Metrics     *observability.Metrics
	Logger      zerolog.Logger
}

// NewRunner creates a simulation runner. A nil Events generator falls back
// to a clock-seeded source.
func NewRunner(opts RunnerOptions) *Runner {
	log := opts.Logger.With().Str("component", "runner").Logger()
	gen := opts.Events
	if gen == nil {
		gen = events.NewGenerator(events.NewMathSource(0), opts.Logger)
	}
	return &Runner{
		events:      gen,
		runStore:    opts.RunStore,
		periodStore: opts.PeriodStore,
		metrics:     opts.Metrics,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic run ids.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Simulate runs the scenario over decisions in the order given and returns
// one metrics record per decision. Demand starts at domain.BaseDemand and
// carries from period to period; nothing else does.
func (r *Runner) Simulate(scenarioName string, decisions []domain.PeriodDecision) []*domain.PeriodMetrics {
	return r.SimulateEach(scenarioName, decisions, nil)
}

// SimulateEach is Simulate with a callback invoked after every period.
func (r *Runner) SimulateEach(
	scenarioName string,
	decisions []domain.PeriodDecision,
	emit func(*domain.PeriodMetrics),
) []*domain.PeriodMetrics {
	params := domain.ResolveScenario(scenarioName)
	demand := domain.BaseDemand
	out := make([]*domain.PeriodMetrics, 0, len(decisions))

	for _, d := range decisions {
		ev := r.events.MaybeTrigger()

		var m *domain.PeriodMetrics
		demand, m = ComputePeriod(demand, params, d, ev)
		out = append(out, m)

		r.log.Debug().
			Int("period", m.Period).
			Float64("demand", m.Demand).
			Float64("score", m.Score).
			Bool("disrupted", m.Disrupted).
			Str("event", ev.Name).
			Msg("period simulated")

		if r.metrics != nil {
			r.metrics.RecordPeriod(params.Name, m)
		}
		if emit != nil {
			emit(m)
		}
	}

	return out
}

// RunRequest describes one simulation submitted by a student.
type RunRequest struct {
	StudentName   string                  `json:"student_name"`
	StudentNumber string                  `json:"student_number"`
	Scenario      string                  `json:"scenario"`
	Decisions     []domain.PeriodDecision `json:"decisions"`
	Save          bool                    `json:"save"`
}

// Run simulates the request and wraps the result in a SimulationRun.
// Steps:
//  1. Reject empty decision lists
//  2. Simulate every period
//  3. Stamp a deterministic run id
//  4. Save when requested
func (r *Runner) Run(ctx context.Context, req RunRequest) (*domain.SimulationRun, error) {
	return r.RunEach(ctx, req, nil)
}

// RunEach is Run with a per-period callback.
func (r *Runner) RunEach(ctx context.Context, req RunRequest, emit func(*domain.PeriodMetrics)) (*domain.SimulationRun, error) {
	// 1. Validate
	if len(req.Decisions) == 0 {
		return nil, ErrNoDecisions
	}

	// 2. Simulate
	start := time.Now()
	periods := r.SimulateEach(req.Scenario, req.Decisions, emit)

	// 3. Build run record
	createdAt := r.now().Truncate(time.Millisecond)
	run := &domain.SimulationRun{
		RunID:         idhash.ComputeRunID(req.StudentNumber, req.Scenario, createdAt.UnixMilli()),
		StudentName:   req.StudentName,
		StudentNumber: req.StudentNumber,
		Scenario:      req.Scenario,
		CreatedAt:     createdAt,
		Decisions:     append([]domain.PeriodDecision(nil), req.Decisions...),
		Periods:       periods,
	}

	if r.metrics != nil {
		r.metrics.RecordRun(req.Scenario, time.Since(start).Seconds())
	}
	r.log.Info().
		Str("run_id", run.RunID).
		Str("scenario", run.Scenario).
		Int("periods", len(periods)).
		Float64("final_score", run.LastPeriod().Score).
		Msg("simulation completed")

	// 4. Save
	if req.Save {
		if err := r.Save(ctx, run); err != nil {
			return run, err
		}
	}

	return run, nil
}

// Save persists a completed run to the configured stores.
// Stores that are not configured are skipped. Only a RunStore failure is
// returned; PeriodStore failures are logged and counted.
func (r *Runner) Save(ctx context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}
	if len(run.Periods) == 0 {
		return ErrEmptyRun
	}

	if r.runStore != nil {
		start := time.Now()
		err := r.runStore.Insert(ctx, run)
		r.recordStore("runs", "insert", start, err)
		if err != nil {
			return fmt.Errorf("save run %s: %w", run.RunID, err)
		}
	}

	// Analytics rows are best-effort: the run is already saved and a
	// failed insert here must not turn every retry into a duplicate.
	if r.periodStore != nil {
		start := time.Now()
		err := r.periodStore.InsertBulk(ctx, run.Records())
		r.recordStore("period_metrics", "insert_bulk", start, err)
		if err != nil {
			r.log.Warn().Err(err).Str("run_id", run.RunID).Msg("period metrics not stored")
		}
	}

	if r.metrics != nil {
		r.metrics.RunsSaved.Inc()
	}
	r.log.Info().Str("run_id", run.RunID).Msg("simulation saved for comparison")
	return nil
}

func (r *Runner) recordStore(store, op string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordStoreOp(store, op, time.Since(start).Seconds(), err)
	}
}
