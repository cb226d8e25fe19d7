package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

// ErrNoRuns is returned when no saved runs are available for aggregation.
var ErrNoRuns = errors.New("no saved runs available for aggregation")

// ComparisonRow is one saved run in the comparison table.
type ComparisonRow struct {
	RunID         string    `json:"run_id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	Scenario      string    `json:"scenario"`
	CreatedAt     time.Time `json:"created_at"`
	Periods       int       `json:"periods"`
	FinalScore    float64   `json:"final_score"`
	MeanScore     float64   `json:"mean_score"`
}

// Compare builds one row per run sorted by created_at ASC, run_id ASC.
// Runs without periods are included with zero scores.
func Compare(runs []*domain.SimulationRun) []ComparisonRow {
	sorted := make([]*domain.SimulationRun, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].RunID < sorted[j].RunID
	})

	rows := make([]ComparisonRow, len(sorted))
	for i, run := range sorted {
		s := Summarize(run)
		rows[i] = ComparisonRow{
			RunID:         run.RunID,
			StudentName:   run.StudentName,
			StudentNumber: run.StudentNumber,
			Scenario:      run.Scenario,
			CreatedAt:     run.CreatedAt,
			Periods:       s.Periods,
			FinalScore:    s.LastScore,
			MeanScore:     s.MeanScore,
		}
	}
	return rows
}

// PeriodBenchmark is the cross-run score distribution for one period number.
type PeriodBenchmark struct {
	Period      int     `json:"period"`
	Runs        int     `json:"runs"`
	MeanScore   float64 `json:"mean_score"`
	StdDevScore float64 `json:"stddev_score"`
	BestScore   float64 `json:"best_score"`
}

// Aggregator computes comparisons and benchmarks from saved runs.
type Aggregator struct {
	runStore    storage.RunStore
	periodStore storage.PeriodMetricsStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(runStore storage.RunStore, periodStore storage.PeriodMetricsStore) *Aggregator {
	return &Aggregator{
		runStore:    runStore,
		periodStore: periodStore,
	}
}

// CompareStudent loads a student's saved runs and builds comparison rows.
// An empty studentNumber compares all saved runs.
// Returns ErrNoRuns if nothing is saved.
func (a *Aggregator) CompareStudent(ctx context.Context, studentNumber string) ([]ComparisonRow, error) {
	var (
		runs []*domain.SimulationRun
		err  error
	)
	if studentNumber == "" {
		runs, err = a.runStore.GetAll(ctx)
	} else {
		runs, err = a.runStore.GetByStudent(ctx, studentNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return Compare(runs), nil
}

// Benchmark computes per-period score statistics across all saved runs of a
// scenario, ordered by period number. Returns ErrNoRuns if none are stored.
func (a *Aggregator) Benchmark(ctx context.Context, scenario string) ([]PeriodBenchmark, error) {
	records, err := a.periodStore.GetByScenario(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("load period metrics: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRuns
	}

	byPeriod := make(map[int][]float64)
	for _, r := range records {
		byPeriod[r.Metrics.Period] = append(byPeriod[r.Metrics.Period], r.Metrics.Score)
	}

	periods := make([]int, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	out := make([]PeriodBenchmark, len(periods))
	for i, p := range periods {
		scores := byPeriod[p]
		b := PeriodBenchmark{
			Period:    p,
			Runs:      len(scores),
			MeanScore: stat.Mean(scores, nil),
			BestScore: floats.Max(scores),
		}
		if len(scores) > 1 {
			b.StdDevScore = stat.StdDev(scores, nil)
		}
		out[i] = b
	}
	return out, nil
}
