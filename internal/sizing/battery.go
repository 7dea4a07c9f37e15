package sizing

import (
	"fmt"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// EmptyBatteryCatalogMessage is returned as the only recommendation when no
// battery catalog rows were supplied.
const EmptyBatteryCatalogMessage = "No battery catalog provided; load a catalog to get battery suggestions."

// SizeBatteries proposes a series x parallel bank for every battery model in
// catalog, sized to store energyKWh for autonomyDays at voltageV.
func SizeBatteries(catalog []domain.BatteryModel, energyKWh, autonomyDays, voltageV float64, opts Options) ([]domain.Recommendation, error) {
	if len(catalog) == 0 {
		return []domain.Recommendation{{Kind: domain.KindEmptyCatalog, Text: EmptyBatteryCatalogMessage}}, nil
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := requireNonNegative("energy_kwh", energyKWh); err != nil {
		return nil, err
	}
	if err := requireNonNegative("autonomy_days", autonomyDays); err != nil {
		return nil, err
	}
	if err := requirePositive("voltage_v", voltageV); err != nil {
		return nil, err
	}

	energyTotalKWh := energyKWh * autonomyDays
	series := unitsFor(voltageV, opts.UnitVoltage)

	recs := make([]domain.Recommendation, 0, len(catalog))
	for i, b := range catalog {
		rec, err := sizeBattery(i, b, energyTotalKWh, voltageV, opts.UnitVoltage, series)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// RequiredCapacityAh is the bank capacity needed to deliver energyTotalKWh
// at voltageV given the model's depth of discharge and efficiency.
func RequiredCapacityAh(b domain.BatteryModel, energyTotalKWh, voltageV float64) (float64, error) {
	if err := requirePositive("voltage_v", voltageV); err != nil {
		return 0, err
	}
	if err := requirePositive(fmt.Sprintf("%s.dod_pct", b.Name), b.DoDPct); err != nil {
		return 0, err
	}
	if b.DoDPct > 100 {
		return 0, invalid(fmt.Sprintf("%s.dod_pct", b.Name), b.DoDPct, "must be <= 100")
	}
	if err := requirePositive(fmt.Sprintf("%s.efficiency_pct", b.Name), b.EfficiencyPct); err != nil {
		return 0, err
	}
	if b.EfficiencyPct > 100 {
		return 0, invalid(fmt.Sprintf("%s.efficiency_pct", b.Name), b.EfficiencyPct, "must be <= 100")
	}
	dod := b.DoDPct / 100
	eff := b.EfficiencyPct / 100
	return energyTotalKWh * 1000 / (voltageV * dod * eff), nil
}

func sizeBattery(i int, b domain.BatteryModel, energyTotalKWh, voltageV, unitVoltage float64, series int) (domain.Recommendation, error) {
	requiredAh, err := RequiredCapacityAh(b, energyTotalKWh, voltageV)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("batteries[%d]: %w", i, err)
	}
	if err := requirePositive(fmt.Sprintf("batteries[%d].capacity_ah (%s)", i, b.Name), b.CapacityAh); err != nil {
		return domain.Recommendation{}, err
	}

	parallel := unitsFor(requiredAh, b.CapacityAh)
	rec := domain.Recommendation{Model: b.Name, Series: series, Parallel: parallel}

	// A capped count no longer reaches the target, so it can never fit.
	capped := float64(series)*unitVoltage < voltageV || float64(parallel)*b.CapacityAh < requiredAh
	if capped || series > b.MaxSeries || parallel > b.MaxParallel {
		rec.Kind = domain.KindInfeasible
		rec.Text = fmt.Sprintf("%s (exceeds limits: max series %d, max parallel %d; requires %d in series x %d in parallel)",
			b.Name, b.MaxSeries, b.MaxParallel, series, parallel)
		return rec, nil
	}

	rec.Kind = domain.KindFeasible
	rec.Quantity = series * parallel
	rec.Text = fmt.Sprintf("%dx %s (%d in series x %d in parallel, %gAh each)",
		rec.Quantity, b.Name, series, parallel, b.CapacityAh)
	return rec, nil
}
