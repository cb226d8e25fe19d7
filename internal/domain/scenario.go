package domain

// ScenarioParameters describes the market environment of a simulation run.
// Resolved once per run and never mutated.
type ScenarioParameters struct {
	Name                  string
	DemandGrowthRate      float64 // per-period compounding rate
	SupplyDisruption      bool
	DisruptionPeriod      *int    // set only when SupplyDisruption is true
	CompetitorPriceChange float64 // fractional competitor price move, e.g. -0.1
}

// Scenario name constants
const (
	ScenarioStableMarket     = "Stable Market"
	ScenarioIncreasingDemand = "Increasing Demand"
	ScenarioSupplyDisruption = "Supply Disruption"
	ScenarioPriceCompetition = "Price Competition"
)

const (
	defaultDisruptionPeriod   = 3
	increasingDemandGrowth    = 0.05
	priceCompetitionPriceMove = -0.1
)

// Predefined scenario profiles.
var (
	ScenarioParamsStableMarket = ScenarioParameters{
		Name: ScenarioStableMarket,
	}

	ScenarioParamsIncreasingDemand = ScenarioParameters{
		Name:             ScenarioIncreasingDemand,
		DemandGrowthRate: increasingDemandGrowth,
	}

	ScenarioParamsSupplyDisruption = ScenarioParameters{
		Name:             ScenarioSupplyDisruption,
		SupplyDisruption: true,
		DisruptionPeriod: intPtr(defaultDisruptionPeriod),
	}

	ScenarioParamsPriceCompetition = ScenarioParameters{
		Name:                  ScenarioPriceCompetition,
		CompetitorPriceChange: priceCompetitionPriceMove,
	}
)

// ResolveScenario returns the profile for a scenario name.
// Unknown names resolve to a neutral profile: no growth, no disruption,
// no competitor move. The returned Name is the requested name.
func ResolveScenario(name string) ScenarioParameters {
	var p ScenarioParameters
	switch name {
	case ScenarioStableMarket:
		p = ScenarioParamsStableMarket
	case ScenarioIncreasingDemand:
		p = ScenarioParamsIncreasingDemand
	case ScenarioSupplyDisruption:
		p = ScenarioParamsSupplyDisruption
		p.DisruptionPeriod = intPtr(*ScenarioParamsSupplyDisruption.DisruptionPeriod)
	case ScenarioPriceCompetition:
		p = ScenarioParamsPriceCompetition
	default:
		return ScenarioParameters{Name: name}
	}
	return p
}

// ScenarioNames lists the named scenarios in display order.
func ScenarioNames() []string {
	return []string{
		ScenarioStableMarket,
		ScenarioIncreasingDemand,
		ScenarioSupplyDisruption,
		ScenarioPriceCompetition,
	}
}

// DisruptsAt reports whether the scenario's supply disruption hits the given period.
func (p ScenarioParameters) DisruptsAt(period int) bool {
	return p.SupplyDisruption && p.DisruptionPeriod != nil && *p.DisruptionPeriod == period
}

func intPtr(v int) *int {
	return &v
}
