// Package scoring reduces a period's metrics to a single composite score.
//
// Inputs are on a 0-10 scale and the weights sum to 1.0, so the composite is
// bounded by 10 while the presented score is clamped to [0, 100]. The
// mismatch is kept as-is; Raw exposes the unrounded composite alongside it.
package scoring

import (
	"math"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// Normalization ceilings for unbounded metrics.
const (
	MaxCost     = 20000.0
	MaxLeadTime = 30.0
)

// Component weights.
const (
	WeightResponsiveness       = 0.2
	WeightEfficiency           = 0.2
	WeightCost                 = 0.15
	WeightLeadTime             = 0.15
	WeightCustomerSatisfaction = 0.2
	WeightEnvironmental        = 0.1
)

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// CostScore maps cost onto [0, 10], 10 meaning free.
func CostScore(cost float64) float64 {
	return Clamp(10-(cost/MaxCost)*10, 0, 10)
}

// LeadTimeScore maps lead time onto [0, 10], 10 meaning instant.
func LeadTimeScore(leadTime float64) float64 {
	return Clamp(10-(leadTime/MaxLeadTime)*10, 0, 10)
}

// Raw returns the unrounded, unclamped weighted composite.
func Raw(m *domain.PeriodMetrics) float64 {
	return m.Responsiveness*WeightResponsiveness +
		math.Max(0, m.Efficiency)*WeightEfficiency +
		CostScore(m.Cost)*WeightCost +
		LeadTimeScore(m.LeadTime)*WeightLeadTime +
		m.CustomerSatisfaction*WeightCustomerSatisfaction +
		(10-m.EnvironmentalImpact)*WeightEnvironmental
}

// Compute returns the presented score: Raw rounded to two decimals, clamped to [0, 100].
func Compute(m *domain.PeriodMetrics) float64 {
	return Clamp(Round2(Raw(m)), MinScore, MaxScore)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds to two decimals, breaking exact ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
