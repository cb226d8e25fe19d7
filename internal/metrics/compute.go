// Package metrics derives run-level statistics from simulated periods:
// per-run summaries, cross-run comparison rows and per-scenario benchmarks.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// RunSummary holds the aggregate view of one run.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`
	Periods  int    `json:"periods"`

	// Score distribution
	MeanScore   float64 `json:"mean_score"`
	StdDevScore float64 `json:"stddev_score"` // sample stddev, 0 below two periods
	MedianScore float64 `json:"median_score"`
	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`

	// Trajectory (order-dependent)
	FirstScore   float64 `json:"first_score"`
	LastScore    float64 `json:"last_score"`
	Improvement  float64 `json:"improvement"`    // last - first
	MaxScoreDrop float64 `json:"max_score_drop"` // worst peak-to-trough

	EventsTriggered  int            `json:"events_triggered"`
	EventCounts      map[string]int `json:"event_counts"`
	DisruptedPeriods int            `json:"disrupted_periods"`

	// MeanProfitMargin averages defined margins only; nil when none is defined.
	MeanProfitMargin *float64 `json:"mean_profit_margin"`
}

// Summarize computes the summary of a run. Periods are taken in run order.
// A run without periods yields a zero summary.
func Summarize(run *domain.SimulationRun) *RunSummary {
	s := &RunSummary{
		RunID:       run.RunID,
		Scenario:    run.Scenario,
		Periods:     len(run.Periods),
		EventCounts: make(map[string]int),
	}
	if len(run.Periods) == 0 {
		return s
	}

	scores := make([]float64, len(run.Periods))
	var margins []float64
	for i, p := range run.Periods {
		scores[i] = p.Score
		if !domain.IsUndefined(p.ProfitMargin) {
			margins = append(margins, p.ProfitMargin)
		}
		if p.Event.Occurred {
			s.EventsTriggered++
			s.EventCounts[p.Event.Name]++
		}
		if p.Disrupted {
			s.DisruptedPeriods++
		}
	}

	s.MeanScore = stat.Mean(scores, nil)
	if len(scores) > 1 {
		s.StdDevScore = stat.StdDev(scores, nil)
	}
	s.MinScore = floats.Min(scores)
	s.MaxScore = floats.Max(scores)

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	s.MedianScore = median(sorted)

	s.FirstScore = scores[0]
	s.LastScore = scores[len(scores)-1]
	s.Improvement = s.LastScore - s.FirstScore
	s.MaxScoreDrop = maxDrop(scores)

	if len(margins) > 0 {
		mean := stat.Mean(margins, nil)
		s.MeanProfitMargin = &mean
	}

	return s
}

// median interpolates between the middle values of an ascending slice.
// stat.Quantile offers no midpoint-averaging estimator for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// maxDrop returns the largest fall from a running peak, in period order.
func maxDrop(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	peak := scores[0]
	worst := 0.0
	for _, v := range scores {
		if v > peak {
			peak = v
		}
		if d := peak - v; d > worst {
			worst = d
		}
	}
	return worst
}
