package domain

import (
	"encoding/json"
	"math"
)

// PeriodMetrics is the performance vector computed for one period.
type PeriodMetrics struct {
	Period               int     `json:"period"`
	Demand               float64 `json:"demand"`
	Responsiveness       float64 `json:"responsiveness"`        // [0, 10]
	Efficiency           float64 `json:"efficiency"`            // [0, 10]
	Cost                 float64 `json:"cost"`                  // not clamped
	LeadTime             float64 `json:"lead_time"`             // >= 1
	EnvironmentalImpact  float64 `json:"environmental_impact"`  // [0, 10]
	CustomerSatisfaction float64 `json:"customer_satisfaction"` // [0, 10]
	SalesRevenue         float64 `json:"sales_revenue"`
	ProfitMargin         float64 `json:"profit_margin"` // percent, NaN when revenue is zero
	Score                float64 `json:"score"`         // [0, 100]
	RawScore             float64 `json:"raw_score"`     // unrounded weighted composite

	Disrupted bool        `json:"disrupted"`
	Event     RandomEvent `json:"event"`
}

// IsUndefined reports whether v is NaN or infinite.
// Callers display such values as "N/A".
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// MarshalJSON encodes an undefined profit margin as null, which
// encoding/json cannot do for NaN on its own.
func (m PeriodMetrics) MarshalJSON() ([]byte, error) {
	type plain PeriodMetrics
	out := struct {
		plain
		ProfitMargin *float64 `json:"profit_margin"`
	}{plain: plain(m)}
	if !IsUndefined(m.ProfitMargin) {
		v := m.ProfitMargin
		out.ProfitMargin = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a null or missing profit margin as NaN.
func (m *PeriodMetrics) UnmarshalJSON(data []byte) error {
	type plain PeriodMetrics
	aux := struct {
		*plain
		ProfitMargin *float64 `json:"profit_margin"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.ProfitMargin = math.NaN()
	if aux.ProfitMargin != nil {
		m.ProfitMargin = *aux.ProfitMargin
	}
	return nil
}
