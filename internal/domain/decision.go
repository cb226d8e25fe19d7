package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTransportMode is returned when parsing a transport mode outside {Air, Sea, Mixed}.
var ErrUnknownTransportMode = errors.New("unknown transportation mode")

// TransportMode is the freight option chosen for a period.
type TransportMode string

// Transport modes
const (
	TransportAir   TransportMode = "Air"
	TransportSea   TransportMode = "Sea"
	TransportMixed TransportMode = "Mixed"
)

// ParseTransportMode parses a mode name case-insensitively.
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "air":
		return TransportAir, nil
	case "sea":
		return TransportSea, nil
	case "mixed":
		return TransportMixed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransportMode, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON decision files
// are checked at the boundary.
func (m *TransportMode) UnmarshalText(text []byte) error {
	parsed, err := ParseTransportMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PeriodDecision holds the student's choices for one period.
// Ranges are the input widget ranges; callers are trusted to respect them.
type PeriodDecision struct {
	Period                   int           `json:"period"`                     // 1-based
	ProductionCapacityChange int           `json:"production_capacity_change"` // [-20, 50] percent
	InventoryLevel           int           `json:"inventory_level"`            // [50, 150] percent of forecast
	TransportationMode       TransportMode `json:"transportation_mode"`
	NumberOfSuppliers        int           `json:"number_of_suppliers"` // [1, 5]
	PricingDiscount          int           `json:"pricing_discount"`    // [0, 30] percent
}

// Input widget ranges.
const (
	MinCapacityChange = -20
	MaxCapacityChange = 50
	MinInventoryLevel = 50
	MaxInventoryLevel = 150
	MinSuppliers      = 1
	MaxSuppliers      = 5
	MinDiscount       = 0
	MaxDiscount       = 30
	MaxPeriods        = 12
)

// DefaultDecision returns the decision the input form starts with.
func DefaultDecision(period int) PeriodDecision {
	return PeriodDecision{
		Period:                   period,
		ProductionCapacityChange: 0,
		InventoryLevel:           100,
		TransportationMode:       TransportAir,
		NumberOfSuppliers:        2,
		PricingDiscount:          0,
	}
}

// DefaultDecisions returns n default decisions for periods 1..n.
func DefaultDecisions(n int) []PeriodDecision {
	out := make([]PeriodDecision, n)
	for i := range out {
		out[i] = DefaultDecision(i + 1)
	}
	return out
}
