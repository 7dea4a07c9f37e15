package sizing

import "github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"

// Result holds the output of one complete sizing pass.
type Result struct {
	Summary   domain.DemandSummary
	Inverters []domain.Recommendation
	Batteries []domain.Recommendation
}

// Run aggregates loads and feeds the demand into both matchers.
func Run(loads []domain.Load, params domain.SystemParameters, inverters []domain.InverterModel, batteries []domain.BatteryModel, opts Options) (Result, error) {
	summary, err := Aggregate(loads, params)
	if err != nil {
		return Result{}, err
	}
	invRecs, err := MatchInverters(inverters, summary.ContinuousKW, summary.PeakKW, opts)
	if err != nil {
		return Result{}, err
	}
	batRecs, err := SizeBatteries(batteries, summary.EnergyKWh, params.AutonomyDays, params.VoltageV, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Summary: summary, Inverters: invRecs, Batteries: batRecs}, nil
}
