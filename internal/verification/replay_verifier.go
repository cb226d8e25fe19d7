package verification

import (
	"context"
	"errors"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
)

var (
	// ErrRunNotFound is returned when run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunIncomplete is returned when a stored run has a different
	// number of decisions and periods.
	ErrRunIncomplete = errors.New("run decisions and periods differ in length")
)

// ReplayVerifier implements Verifier against a RunStore.
type ReplayVerifier struct {
	runStore storage.RunStore
}

var _ Verifier = (*ReplayVerifier)(nil)

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(runStore storage.RunStore) *ReplayVerifier {
	return &ReplayVerifier{runStore: runStore}
}

// VerifyRun verifies a single run by replaying it.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	// 1. Load stored run
	stored, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	// 2. Replay
	replayed, err := Replay(stored)
	if err != nil {
		return nil, err
	}

	// 3. Compare
	var divergences []FieldDivergence
	for i := range stored.Periods {
		divergences = append(divergences, ComparePeriodMetrics(stored.Periods[i], replayed[i])...)
	}

	result := &VerificationResult{
		RunID:       runID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}
	if last := stored.LastPeriod(); last != nil {
		result.StoredFinalScore = last.Score
		result.ReplayedFinalScore = replayed[len(replayed)-1].Score
	}
	return result, nil
}

// VerifyAll verifies all stored runs.
func (v *ReplayVerifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	runs, err := v.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalRuns: len(runs),
		Results:   make([]VerificationResult, 0, len(runs)),
	}

	for _, run := range runs {
		result, err := v.VerifyRun(ctx, run.RunID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				RunID: run.RunID,
				Match: false,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}

// Replay recomputes every period of run from its decisions and the
// events recorded on its stored periods.
func Replay(run *domain.SimulationRun) ([]*domain.PeriodMetrics, error) {
	if len(run.Decisions) != len(run.Periods) {
		return nil, ErrRunIncomplete
	}

	params := domain.ResolveScenario(run.Scenario)
	demand := domain.BaseDemand
	out := make([]*domain.PeriodMetrics, len(run.Decisions))
	for i, d := range run.Decisions {
		demand, out[i] = simulation.ComputePeriod(demand, params, d, run.Periods[i].Event)
	}
	return out, nil
}
