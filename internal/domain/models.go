package domain

import "time"

// Load is one electrical consumer entry of a load list.
type Load struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	PowerW      float64 `json:"power_w" yaml:"power_w"`
	PeakFactor  float64 `json:"peak_factor" yaml:"peak_factor"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	HoursPerDay float64 `json:"hours_per_day" yaml:"hours_per_day"`
}

// LoadEntry is a load as entered by a user. It either names an equipment
// model from the catalog or carries its own power and peak factor.
type LoadEntry struct {
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	PowerW      *float64 `json:"power_w,omitempty" yaml:"power_w,omitempty"`
	PeakFactor  *float64 `json:"peak_factor,omitempty" yaml:"peak_factor,omitempty"`
	Quantity    int      `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	HoursPerDay float64  `json:"hours_per_day" yaml:"hours_per_day"`
}

// Equipment is a row of the equipment catalog.
type Equipment struct {
	ID         int64   `db:"id" json:"-"`
	Position   int     `db:"position" json:"-"`
	Name       string  `db:"name" json:"name"`
	PowerW     float64 `db:"power_w" json:"power_w"`
	PeakFactor float64 `db:"peak_factor" json:"peak_factor"`
}

// SystemParameters are supplied once per sizing run.
type SystemParameters struct {
	VoltageV     float64 `json:"voltage_v" yaml:"voltage_v"`
	AutonomyDays float64 `json:"autonomy_days" yaml:"autonomy_days"`
	Simultaneity float64 `json:"simultaneity" yaml:"simultaneity"`
	SafetyMargin float64 `json:"safety_margin" yaml:"safety_margin"`
	Efficiency   float64 `json:"efficiency" yaml:"efficiency"`
}

// ParameterOverrides holds optionally set system parameters. Nil fields
// leave the underlying value untouched.
type ParameterOverrides struct {
	VoltageV     *float64 `json:"voltage_v,omitempty" yaml:"voltage_v,omitempty"`
	AutonomyDays *float64 `json:"autonomy_days,omitempty" yaml:"autonomy_days,omitempty"`
	Simultaneity *float64 `json:"simultaneity,omitempty" yaml:"simultaneity,omitempty"`
	SafetyMargin *float64 `json:"safety_margin,omitempty" yaml:"safety_margin,omitempty"`
	Efficiency   *float64 `json:"efficiency,omitempty" yaml:"efficiency,omitempty"`
}

// Apply returns p with every set override copied in.
func (o ParameterOverrides) Apply(p SystemParameters) SystemParameters {
	if o.VoltageV != nil {
		p.VoltageV = *o.VoltageV
	}
	if o.AutonomyDays != nil {
		p.AutonomyDays = *o.AutonomyDays
	}
	if o.Simultaneity != nil {
		p.Simultaneity = *o.Simultaneity
	}
	if o.SafetyMargin != nil {
		p.SafetyMargin = *o.SafetyMargin
	}
	if o.Efficiency != nil {
		p.Efficiency = *o.Efficiency
	}
	return p
}

// InverterModel is a row of the inverter catalog. Ratings are in kW.
type InverterModel struct {
	ID          int64   `db:"id" json:"-"`
	Position    int     `db:"position" json:"-"`
	Name        string  `db:"name" json:"name"`
	NominalKW   float64 `db:"nominal_kw" json:"nominal_kw"`
	PeakKW      float64 `db:"peak_kw" json:"peak_kw"`
	MaxParallel int     `db:"max_parallel" json:"max_parallel"`
}

// BatteryModel is a row of the battery catalog.
type BatteryModel struct {
	ID            int64   `db:"id" json:"-"`
	Position      int     `db:"position" json:"-"`
	Name          string  `db:"name" json:"name"`
	DoDPct        float64 `db:"dod_pct" json:"dod_pct"`
	EfficiencyPct float64 `db:"efficiency_pct" json:"efficiency_pct"`
	CapacityAh    float64 `db:"capacity_ah" json:"capacity_ah"`
	MaxSeries     int     `db:"max_series" json:"max_series"`
	MaxParallel   int     `db:"max_parallel" json:"max_parallel"`
}

// Catalog bundles the reference data read from one workbook.
type Catalog struct {
	Equipment  []Equipment        `json:"equipment"`
	Inverters  []InverterModel    `json:"inverters"`
	Batteries  []BatteryModel     `json:"batteries"`
	Parameters ParameterOverrides `json:"parameters"`
}

// DemandSummary is the aggregated demand of a load list.
type DemandSummary struct {
	EnergyKWh    float64 `json:"energy_kwh" dynamodbav:"energyKwh"`
	ContinuousKW float64 `json:"continuous_kw" dynamodbav:"continuousKw"`
	PeakKW       float64 `json:"peak_kw" dynamodbav:"peakKw"`
}

type RecommendationKind string

const (
	KindFeasible     RecommendationKind = "feasible"
	KindInfeasible   RecommendationKind = "infeasible"
	KindEmptyCatalog RecommendationKind = "empty_catalog"
	KindNoFit        RecommendationKind = "no_fit"
)

// Recommendation is one line of sizing output.
type Recommendation struct {
	Kind     RecommendationKind `json:"kind" dynamodbav:"kind"`
	Model    string             `json:"model,omitempty" dynamodbav:"model,omitempty"`
	Quantity int                `json:"quantity,omitempty" dynamodbav:"quantity,omitempty"`
	Series   int                `json:"series,omitempty" dynamodbav:"series,omitempty"`
	Parallel int                `json:"parallel,omitempty" dynamodbav:"parallel,omitempty"`
	Text     string             `json:"text" dynamodbav:"text"`
}

func (r Recommendation) String() string { return r.Text }

// Feasible reports whether any recommendation in recs is a feasible one.
func Feasible(recs []Recommendation) bool {
	for _, r := range recs {
		if r.Kind == KindFeasible {
			return true
		}
	}
	return false
}

// SizingRun is the persisted record of one sizing request.
type SizingRun struct {
	ID          string           `json:"id" dynamodbav:"runId"`
	CreatedAt   time.Time        `json:"created_at" dynamodbav:"createdAt"`
	Params      SystemParameters `json:"params" dynamodbav:"params"`
	Policy      string           `json:"policy" dynamodbav:"policy"`
	UnitVoltage float64          `json:"unit_voltage" dynamodbav:"unitVoltage"`
	Loads       []Load           `json:"loads" dynamodbav:"loads"`
	Summary     DemandSummary    `json:"summary" dynamodbav:"summary"`
	Inverters   []Recommendation `json:"inverters" dynamodbav:"inverters"`
	Batteries   []Recommendation `json:"batteries" dynamodbav:"batteries"`
	ReportURL   string           `json:"report_url,omitempty" dynamodbav:"reportUrl,omitempty"`
}
