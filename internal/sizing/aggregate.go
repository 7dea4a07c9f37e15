package sizing

import (
	"fmt"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// ValidateParameters checks the system parameters of a run. Voltage and
// efficiency are divisors and must be strictly positive.
func ValidateParameters(p domain.SystemParameters) error {
	if err := requirePositive("voltage_v", p.VoltageV); err != nil {
		return err
	}
	if err := requirePositive("efficiency", p.Efficiency); err != nil {
		return err
	}
	if p.Efficiency > 1 {
		return invalid("efficiency", p.Efficiency, "must be <= 1")
	}
	if err := requireNonNegative("autonomy_days", p.AutonomyDays); err != nil {
		return err
	}
	if err := requireNonNegative("simultaneity", p.Simultaneity); err != nil {
		return err
	}
	if p.Simultaneity > 1 {
		return invalid("simultaneity", p.Simultaneity, "must be <= 1")
	}
	if !finite(p.SafetyMargin) || p.SafetyMargin < 1 {
		return invalid("safety_margin", p.SafetyMargin, "must be >= 1")
	}
	return nil
}

func validateLoad(i int, l domain.Load) error {
	name := func(field string) string { return fmt.Sprintf("loads[%d].%s", i, field) }
	if !finite(l.PowerW) || l.PowerW <= 0 {
		return invalid(name("power_w"), l.PowerW, "must be > 0")
	}
	if !finite(l.PeakFactor) || l.PeakFactor < 1 {
		return invalid(name("peak_factor"), l.PeakFactor, "must be >= 1")
	}
	if l.Quantity < 1 {
		return invalid(name("quantity"), float64(l.Quantity), "must be >= 1")
	}
	return requireNonNegative(name("hours_per_day"), l.HoursPerDay)
}

// Aggregate reduces a load list to its demand figures. Energy and continuous
// power are summed over all loads; peak power is the largest single peak.
func Aggregate(loads []domain.Load, params domain.SystemParameters) (domain.DemandSummary, error) {
	if err := ValidateParameters(params); err != nil {
		return domain.DemandSummary{}, err
	}

	var energyWh, continuousW, maxPeakW float64
	for i, l := range loads {
		if err := validateLoad(i, l); err != nil {
			return domain.DemandSummary{}, err
		}
		nominal := l.PowerW * float64(l.Quantity)
		energyWh += nominal * l.HoursPerDay
		continuousW += nominal
		maxPeakW = max(maxPeakW, nominal*l.PeakFactor)
	}

	return domain.DemandSummary{
		EnergyKWh:    energyWh / 1000 / params.Efficiency,
		ContinuousKW: continuousW * params.Simultaneity * params.SafetyMargin / 1000,
		PeakKW:       maxPeakW * params.SafetyMargin / 1000,
	}, nil
}
