package simulation

import (
	"math"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/scoring"
)

// Baseline metrics every period starts from.
const (
	baseResponsiveness      = 5.0
	baseEfficiency          = 5.0
	baseCost                = 5000.0
	baseLeadTime            = 15.0
	baseEnvironmentalImpact = 5.0
)

// Disruption penalties.
const (
	disruptionLeadTime = 5.0
	disruptionCost     = 2000.0
)

// Lead time never drops below one day.
const minLeadTime = 1.0

// ComputePeriod computes one period's metrics from the demand carried in
// from the previous period. Returns the new demand and the metrics.
// Order of adjustments:
//  1. Grow demand by the scenario rate
//  2. Seed baseline metrics
//  3. Scenario disruption
//  4. Decision effects (capacity, inventory, transport, suppliers, discount)
//  5. Competitor price move
//  6. Event effects
//  7. Clamp bounded metrics
//  8. Derived metrics and score
func ComputePeriod(
	priorDemand float64,
	params domain.ScenarioParameters,
	d domain.PeriodDecision,
	ev domain.RandomEvent,
) (float64, *domain.PeriodMetrics) {
	// 1. Demand
	demand := priorDemand * (1 + params.DemandGrowthRate)

	// 2. Baseline
	m := &domain.PeriodMetrics{
		Period:              d.Period,
		Demand:              demand,
		Responsiveness:      baseResponsiveness,
		Efficiency:          baseEfficiency,
		Cost:                baseCost,
		LeadTime:            baseLeadTime,
		EnvironmentalImpact: baseEnvironmentalImpact,
		Event:               ev,
	}

	// 3. Disruption
	if params.DisruptsAt(d.Period) {
		m.Disrupted = true
		m.LeadTime += disruptionLeadTime
		m.Cost += disruptionCost
	}

	// 4. Decisions
	applyDecision(m, d)

	// 5. Competitor
	if params.CompetitorPriceChange != 0 {
		m.Cost -= params.CompetitorPriceChange * 1000
	}

	// 6. Events
	if ev.Occurred {
		applyEffects(m, ev.Effects)
	}

	// 7. Clamp
	m.Responsiveness = scoring.Clamp(m.Responsiveness, 0, 10)
	m.Efficiency = scoring.Clamp(m.Efficiency, 0, 10)
	m.EnvironmentalImpact = scoring.Clamp(m.EnvironmentalImpact, 0, 10)
	m.LeadTime = math.Max(minLeadTime, m.LeadTime)

	// 8. Derived
	m.CustomerSatisfaction = scoring.Clamp(10-m.LeadTime*0.5, 0, 10)
	m.SalesRevenue = demand * (1 - float64(d.PricingDiscount)/100) * 10
	m.ProfitMargin = profitMargin(m.SalesRevenue, m.Cost)
	m.RawScore = scoring.Raw(m)
	m.Score = scoring.Compute(m)

	return demand, m
}

// applyDecision applies the student's choices to the baseline.
func applyDecision(m *domain.PeriodMetrics, d domain.PeriodDecision) {
	capacity := float64(d.ProductionCapacityChange)
	m.Responsiveness += capacity * 0.05
	m.Cost += math.Abs(capacity) * 50

	inventory := float64(d.InventoryLevel - 100)
	m.LeadTime -= inventory * 0.05
	m.Cost += inventory * 20

	switch d.TransportationMode {
	case domain.TransportAir:
		m.LeadTime -= 5
		m.Cost += 2000
		m.EnvironmentalImpact += 2
		m.Responsiveness += 2
	case domain.TransportSea:
		m.LeadTime += 3
		m.Cost -= 500
		m.EnvironmentalImpact--
		m.Responsiveness--
	default: // domain.TransportMixed
		m.Cost += 500
		m.EnvironmentalImpact += 0.5
	}

	suppliers := float64(d.NumberOfSuppliers)
	m.Efficiency += (3 - suppliers) * 0.5
	m.Cost += suppliers * 100
	m.EnvironmentalImpact += suppliers * 0.2

	discount := float64(d.PricingDiscount)
	m.Responsiveness += discount * 0.1
	m.Cost -= discount * 50
}

// applyEffects adds event deltas to the named base metrics.
func applyEffects(m *domain.PeriodMetrics, effects map[domain.MetricName]float64) {
	for name, delta := range effects {
		switch name {
		case domain.MetricLeadTime:
			m.LeadTime += delta
		case domain.MetricCost:
			m.Cost += delta
		case domain.MetricEfficiency:
			m.Efficiency += delta
		}
	}
}

// profitMargin returns margin in percent; NaN when there is no revenue.
func profitMargin(revenue, cost float64) float64 {
	if revenue == 0 {
		return math.NaN()
	}
	return (revenue - cost) / revenue * 100
}
