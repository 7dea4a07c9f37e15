package sizing

import (
	"fmt"
	"strings"
)

// InverterPolicy selects how a candidate inverter quantity is accepted.
type InverterPolicy string

const (
	// PolicyQuantityOnly accepts a model when the unit count needed for the
	// continuous demand fits its parallel limit. Peak coverage is ignored.
	PolicyQuantityOnly InverterPolicy = "quantity-only"
	// PolicyFullCoverage additionally requires the same unit count to cover
	// both continuous and peak demand.
	PolicyFullCoverage InverterPolicy = "full-coverage"
)

// DefaultUnitVoltage is the nominal voltage assumed for every battery unit
// when computing cells in series. Catalog rows do not carry a voltage yet.
const DefaultUnitVoltage = 12.0

// ParsePolicy accepts the policy names plus the short forms "qty" and "full".
func ParsePolicy(s string) (InverterPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyFullCoverage), "full":
		return PolicyFullCoverage, nil
	case string(PolicyQuantityOnly), "qty", "quantity":
		return PolicyQuantityOnly, nil
	}
	return "", fmt.Errorf("%w: unknown inverter policy %q", ErrInvalidParameter, s)
}

// Options configure the two matchers.
type Options struct {
	InverterPolicy InverterPolicy
	UnitVoltage    float64
}

func DefaultOptions() Options {
	return Options{
		InverterPolicy: PolicyFullCoverage,
		UnitVoltage:    DefaultUnitVoltage,
	}
}

// normalize fills zero fields with defaults and rejects unknown values.
func (o Options) normalize() (Options, error) {
	if o.InverterPolicy == "" {
		o.InverterPolicy = PolicyFullCoverage
	}
	if o.InverterPolicy != PolicyFullCoverage && o.InverterPolicy != PolicyQuantityOnly {
		return o, fmt.Errorf("%w: unknown inverter policy %q", ErrInvalidParameter, o.InverterPolicy)
	}
	if o.UnitVoltage == 0 {
		o.UnitVoltage = DefaultUnitVoltage
	}
	if err := requirePositive("unit_voltage", o.UnitVoltage); err != nil {
		return o, err
	}
	return o, nil
}
