package domain

// MetricName identifies a base metric an event can perturb.
type MetricName string

// Metrics addressable by event effects.
const (
	MetricLeadTime   MetricName = "Lead Time"
	MetricCost       MetricName = "Cost"
	MetricEfficiency MetricName = "Efficiency"
)

// RandomEvent is a period-local perturbation. Effects are additive deltas.
type RandomEvent struct {
	Occurred    bool                   `json:"occurred"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Effects     map[MetricName]float64 `json:"effects,omitempty"`
}

// Event names
const (
	EventTransportationStrike  = "Transportation Strike"
	EventRegulatoryChange      = "Regulatory Change"
	EventTechnologyAdvancement = "Technology Advancement"
)

// NoEvent is the value for a period without an event.
func NoEvent() RandomEvent {
	return RandomEvent{Effects: map[MetricName]float64{}}
}
