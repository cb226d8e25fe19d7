package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/metrics"
	"github.com/Sicakyuz/SCM-simulation/internal/scoring"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// Generator produces reports from completed or stored runs.
type Generator struct {
	runStore   storage.RunStore
	aggregator *metrics.Aggregator
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. periodStore may be nil,
// in which case reports carry no benchmark.
func NewGenerator(runStore storage.RunStore, periodStore storage.PeriodMetricsStore) *Generator {
	g := &Generator{
		runStore: runStore,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if periodStore != nil {
		g.aggregator = metrics.NewAggregator(runStore, periodStore)
	}
	return g
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads a saved run and builds its report.
// Returns storage.ErrNotFound for an unknown run id.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return g.GenerateFromRun(ctx, run)
}

// GenerateFromRun builds a report for a run that may not have been saved.
func (g *Generator) GenerateFromRun(ctx context.Context, run *domain.SimulationRun) (*Report, error) {
	r := &Report{
		GeneratedAt: g.now(),
		Run:         run,
		Summary:     metrics.Summarize(run),
	}

	if last := run.LastPeriod(); last != nil {
		r.Profile = scoring.Profile(last)
	}

	if g.aggregator != nil {
		bench, err := g.aggregator.Benchmark(ctx, run.Scenario)
		if err != nil && !errors.Is(err, metrics.ErrNoRuns) {
			return nil, err
		}
		r.Benchmark = bench
	}

	return r, nil
}

// GenerateComparison builds the saved-runs table for a student, or for
// everyone when studentNumber is empty. No saved runs yields empty rows.
func (g *Generator) GenerateComparison(ctx context.Context, studentNumber string) (*ComparisonReport, error) {
	var (
		runs []*domain.SimulationRun
		err  error
	)
	if studentNumber == "" {
		runs, err = g.runStore.GetAll(ctx)
	} else {
		runs, err = g.runStore.GetByStudent(ctx, studentNumber)
	}
	if err != nil {
		return nil, err
	}

	return &ComparisonReport{
		GeneratedAt:   g.now(),
		StudentNumber: studentNumber,
		Rows:          metrics.Compare(runs),
	}, nil
}
