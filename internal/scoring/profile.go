package scoring

import "github.com/Sicakyuz/SCM-simulation/internal/domain"

// Axis is one spoke of the performance radar, on a 0-10 scale.
type Axis struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Profile returns the radar axes for a period. Cost and lead time are
// normalized with the same ceilings the score uses.
func Profile(m *domain.PeriodMetrics) []Axis {
	return []Axis{
		{Name: "Responsiveness", Value: m.Responsiveness},
		{Name: "Efficiency", Value: m.Efficiency},
		{Name: "Normalized Cost", Value: CostScore(m.Cost)},
		{Name: "Normalized Lead Time", Value: LeadTimeScore(m.LeadTime)},
		{Name: "Environmental Impact", Value: m.EnvironmentalImpact},
		{Name: "Customer Satisfaction", Value: m.CustomerSatisfaction},
	}
}
