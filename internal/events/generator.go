// Package events draws the random disruptions that can hit a simulated period.
package events

import (
	"github.com/rs/zerolog"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// EventProbability is the chance that a period sees an event.
const EventProbability = 0.2

// catalogEntry describes one named event.
type catalogEntry struct {
	name        string
	description string
	metric      domain.MetricName
	delta       float64
}

// catalog is indexed by the uniform choice; order is fixed.
var catalog = []catalogEntry{
	{
		name:        domain.EventTransportationStrike,
		description: "A transportation strike has occurred, increasing lead times!",
		metric:      domain.MetricLeadTime,
		delta:       5,
	},
	{
		name:        domain.EventRegulatoryChange,
		description: "New regulations have increased operational costs.",
		metric:      domain.MetricCost,
		delta:       1000,
	},
	{
		name:        domain.EventTechnologyAdvancement,
		description: "A new technology has improved efficiency.",
		metric:      domain.MetricEfficiency,
		delta:       1,
	},
}

// EventNames returns the names of all events in catalog order.
func EventNames() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.name
	}
	return names
}

// Generator draws independent events, one per call.
type Generator struct {
	src RandomSource
	log zerolog.Logger
}

// NewGenerator creates a generator over src.
func NewGenerator(src RandomSource, log zerolog.Logger) *Generator {
	return &Generator{
		src: src,
		log: log.With().Str("component", "events").Logger(),
	}
}

// MaybeTrigger draws whether an event occurs and, if so, which one.
// A failing source yields no event.
func (g *Generator) MaybeTrigger() domain.RandomEvent {
	roll, err := g.src.Float64()
	if err != nil {
		g.log.Warn().Err(err).Msg("random source failed, skipping event draw")
		return domain.NoEvent()
	}
	if roll >= EventProbability {
		return domain.NoEvent()
	}

	idx, err := g.src.IntN(len(catalog))
	if err != nil || idx < 0 || idx >= len(catalog) {
		g.log.Warn().Err(err).Int("index", idx).Msg("random source failed to choose event")
		return domain.NoEvent()
	}

	e := catalog[idx]
	return domain.RandomEvent{
		Occurred:    true,
		Name:        e.name,
		Description: e.description,
		Effects:     map[domain.MetricName]float64{e.metric: e.delta},
	}
}
