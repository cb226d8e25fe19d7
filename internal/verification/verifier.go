// Package verification replays saved runs and checks that the stored
// period metrics still match what the calculator produces.
// Each period is recomputed from its stored decision and its recorded
// event, so the check needs no random source.
package verification

import (
	"context"
	"math"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Period   int         `json:"period"` // 0 for run-level divergences
	Field    string      `json:"field"`
	Expected interface{} `json:"expected"` // stored value
	Actual   interface{} `json:"actual"`   // replayed value
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID              string            `json:"run_id"`
	Match              bool              `json:"match"`
	Divergences        []FieldDivergence `json:"divergences"`
	StoredFinalScore   float64           `json:"stored_final_score"`
	ReplayedFinalScore float64           `json:"replayed_final_score"`
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRuns     int                  `json:"total_runs"`
	MatchedRuns   int                  `json:"matched_runs"`
	DivergentRuns int                  `json:"divergent_runs"`
	Results       []VerificationResult `json:"results"`
}

// Verifier verifies saved runs by replaying them.
type Verifier interface {
	// VerifyRun loads the stored run, recomputes every period, and
	// compares all metric fields.
	VerifyRun(ctx context.Context, runID string) (*VerificationResult, error)

	// VerifyAll verifies all stored runs.
	VerifyAll(ctx context.Context) (*VerificationReport, error)
}

// ComparePeriodMetrics compares two period records and returns divergences.
// Float fields use FloatTolerance; two undefined values compare equal.
func ComparePeriodMetrics(stored, replayed *domain.PeriodMetrics) []FieldDivergence {
	var divergences []FieldDivergence
	add := func(field string, expected, actual interface{}) {
		divergences = append(divergences, FieldDivergence{
			Period:   stored.Period,
			Field:    field,
			Expected: expected,
			Actual:   actual,
		})
	}

	if stored.Period != replayed.Period {
		add("Period", stored.Period, replayed.Period)
	}

	floats := []struct {
		name             string
		stored, replayed float64
	}{
		{"Demand", stored.Demand, replayed.Demand},
		{"Responsiveness", stored.Responsiveness, replayed.Responsiveness},
		{"Efficiency", stored.Efficiency, replayed.Efficiency},
		{"Cost", stored.Cost, replayed.Cost},
		{"LeadTime", stored.LeadTime, replayed.LeadTime},
		{"EnvironmentalImpact", stored.EnvironmentalImpact, replayed.EnvironmentalImpact},
		{"CustomerSatisfaction", stored.CustomerSatisfaction, replayed.CustomerSatisfaction},
		{"SalesRevenue", stored.SalesRevenue, replayed.SalesRevenue},
		{"ProfitMargin", stored.ProfitMargin, replayed.ProfitMargin},
		{"Score", stored.Score, replayed.Score},
	}
	for _, f := range floats {
		if !floatEquals(f.stored, f.replayed) {
			add(f.name, displayFloat(f.stored), displayFloat(f.replayed))
		}
	}

	if stored.Disrupted != replayed.Disrupted {
		add("Disrupted", stored.Disrupted, replayed.Disrupted)
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
// Undefined values are equal only to each other.
func floatEquals(a, b float64) bool {
	if domain.IsUndefined(a) || domain.IsUndefined(b) {
		return domain.IsUndefined(a) && domain.IsUndefined(b)
	}
	return math.Abs(a-b) <= FloatTolerance
}

// displayFloat keeps undefined values JSON-encodable.
func displayFloat(v float64) interface{} {
	if domain.IsUndefined(v) {
		return nil
	}
	return v
}
