package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

var lithium100 = domain.BatteryModel{
	Name:          "LFP-100",
	DoDPct:        80,
	EfficiencyPct: 90,
	CapacityAh:    100,
	MaxSeries:     4,
	MaxParallel:   10,
}

func TestSizeBatteries_Feasible(t *testing.T) {
	recs, err := SizeBatteries([]domain.BatteryModel{lithium100}, 1.176, 2, 48, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, domain.KindFeasible, r.Kind)
	assert.Equal(t, 4, r.Series)
	assert.Equal(t, 1, r.Parallel)
	assert.Equal(t, 4, r.Quantity)
	assert.Equal(t, "4x LFP-100 (4 in series x 1 in parallel, 100Ah each)", r.Text)
}

func TestSizeBatteries_RequiredCapacity(t *testing.T) {
	ah, err := RequiredCapacityAh(lithium100, 2.352, 48)
	require.NoError(t, err)
	assert.InDelta(t, 68.0556, ah, 1e-3)
}

func TestSizeBatteries_EmptyCatalog(t *testing.T) {
	recs, err := SizeBatteries(nil, 1, 2, 48, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.KindEmptyCatalog, recs[0].Kind)
	assert.Equal(t, EmptyBatteryCatalogMessage, recs[0].Text)

	recs, err = SizeBatteries([]domain.BatteryModel{}, 1, 2, 48, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, EmptyBatteryCatalogMessage, recs[0].Text)
}

func TestSizeBatteries_ExceedsLimits(t *testing.T) {
	shortStack := lithium100
	shortStack.Name = "SHORT"
	shortStack.MaxSeries = 2

	fewStrings := lithium100
	fewStrings.Name = "FEW"
	fewStrings.MaxParallel = 1

	recs, err := SizeBatteries([]domain.BatteryModel{shortStack, fewStrings, lithium100}, 10, 3, 48, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.KindInfeasible, recs[0].Kind)
	assert.Contains(t, recs[0].Text, "SHORT")
	assert.Contains(t, recs[0].Text, "max series 2")
	assert.Contains(t, recs[0].Text, "max parallel 10")

	// 30 kWh at 48 V, 72% usable -> 868 Ah -> 9 strings
	assert.Equal(t, domain.KindInfeasible, recs[1].Kind)
	assert.Equal(t, 9, recs[1].Parallel)
	assert.Contains(t, recs[1].Text, "max parallel 1")

	assert.Equal(t, domain.KindFeasible, recs[2].Kind)
	assert.Equal(t, 36, recs[2].Quantity)
}

func TestSizeBatteries_UnitVoltageIsConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitVoltage = 24

	recs, err := SizeBatteries([]domain.BatteryModel{lithium100}, 1.176, 2, 48, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, recs[0].Series)
	assert.Equal(t, 2, recs[0].Quantity)
}

func TestSizeBatteries_CeilingProperties(t *testing.T) {
	voltages := []float64{12, 24, 36, 48, 50, 96, 110}
	energies := []float64{0.5, 1.176, 3.3, 12, 27.5}

	for _, v := range voltages {
		for _, e := range energies {
			recs, err := SizeBatteries([]domain.BatteryModel{lithium100}, e, 2, v, DefaultOptions())
			require.NoError(t, err)
			r := recs[0]

			assert.GreaterOrEqual(t, float64(r.Series)*DefaultUnitVoltage, v)
			assert.Less(t, float64(r.Series-1)*DefaultUnitVoltage, v)

			required, err := RequiredCapacityAh(lithium100, e*2, v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, float64(r.Parallel)*lithium100.CapacityAh, required)
		}
	}
}

func TestSizeBatteries_ZeroEnergyNeedsNoStrings(t *testing.T) {
	recs, err := SizeBatteries([]domain.BatteryModel{lithium100}, 0, 2, 24, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, domain.KindFeasible, recs[0].Kind)
	assert.Equal(t, 2, recs[0].Series)
	assert.Equal(t, 0, recs[0].Parallel)
	assert.Equal(t, 0, recs[0].Quantity)
}

func TestSizeBatteries_CappedCountIsInfeasible(t *testing.T) {
	huge := domain.BatteryModel{Name: "TINY-CELL", DoDPct: 100, EfficiencyPct: 100, CapacityAh: 1e-6, MaxSeries: 4, MaxParallel: math.MaxInt}

	recs, err := SizeBatteries([]domain.BatteryModel{huge}, 1e6, 1, 48, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.KindInfeasible, recs[0].Kind)
	assert.Equal(t, math.MaxInt32, recs[0].Parallel)
	assert.Zero(t, recs[0].Quantity)
}

func TestSizeBatteries_DivisionGuards(t *testing.T) {
	zeroDoD := lithium100
	zeroDoD.DoDPct = 0
	zeroEff := lithium100
	zeroEff.EfficiencyPct = 0
	zeroCap := lithium100
	zeroCap.CapacityAh = 0

	for name, b := range map[string]domain.BatteryModel{"dod": zeroDoD, "efficiency": zeroEff, "capacity": zeroCap} {
		t.Run(name, func(t *testing.T) {
			_, err := SizeBatteries([]domain.BatteryModel{b}, 1, 1, 48, DefaultOptions())
			assert.ErrorIs(t, err, ErrDivisionByZero)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	_, err := SizeBatteries([]domain.BatteryModel{lithium100}, 1, 1, 0, DefaultOptions())
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = SizeBatteries([]domain.BatteryModel{lithium100}, 1, 1, 48, Options{UnitVoltage: -12})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	tooDeep := lithium100
	tooDeep.DoDPct = 120
	_, err = SizeBatteries([]domain.BatteryModel{tooDeep}, 1, 1, 48, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSizeBatteries_Idempotent(t *testing.T) {
	catalog := []domain.BatteryModel{lithium100, {Name: "AGM", DoDPct: 50, EfficiencyPct: 85, CapacityAh: 220, MaxSeries: 8, MaxParallel: 4}}
	r1, err := SizeBatteries(catalog, 5, 2, 48, DefaultOptions())
	require.NoError(t, err)
	r2, err := SizeBatteries(catalog, 5, 2, 48, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
