package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) ListEquipment(ctx context.Context) ([]domain.Equipment, error) {
	out := []domain.Equipment{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, position, name, power_w, peak_factor FROM equipment ORDER BY position, id`)
	return out, err
}

func (r *Repos) ListInverters(ctx context.Context) ([]domain.InverterModel, error) {
	out := []domain.InverterModel{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, position, name, nominal_kw, peak_kw, max_parallel FROM inverter_models ORDER BY position, id`)
	return out, err
}

func (r *Repos) ListBatteries(ctx context.Context) ([]domain.BatteryModel, error) {
	out := []domain.BatteryModel{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, position, name, dod_pct, efficiency_pct, capacity_ah, max_series, max_parallel FROM battery_models ORDER BY position, id`)
	return out, err
}

// ReplaceCatalog swaps the stored catalog for cat in one transaction.
func (r *Repos) ReplaceCatalog(ctx context.Context, cat *domain.Catalog) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"equipment", "inverter_models", "battery_models", "catalog_parameters"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i := range cat.Equipment {
		cat.Equipment[i].Position = i
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO equipment (position, name, power_w, peak_factor) VALUES (:position, :name, :power_w, :peak_factor)`, cat.Equipment[i]); err != nil {
			return fmt.Errorf("insert equipment %q: %w", cat.Equipment[i].Name, err)
		}
	}
	for i := range cat.Inverters {
		cat.Inverters[i].Position = i
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO inverter_models (position, name, nominal_kw, peak_kw, max_parallel) VALUES (:position, :name, :nominal_kw, :peak_kw, :max_parallel)`, cat.Inverters[i]); err != nil {
			return fmt.Errorf("insert inverter %q: %w", cat.Inverters[i].Name, err)
		}
	}
	for i := range cat.Batteries {
		cat.Batteries[i].Position = i
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO battery_models (position, name, dod_pct, efficiency_pct, capacity_ah, max_series, max_parallel) VALUES (:position, :name, :dod_pct, :efficiency_pct, :capacity_ah, :max_series, :max_parallel)`, cat.Batteries[i]); err != nil {
			return fmt.Errorf("insert battery %q: %w", cat.Batteries[i].Name, err)
		}
	}
	for _, p := range parameterRows(cat.Parameters) {
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO catalog_parameters (name, value) VALUES (:name, :value)`, p); err != nil {
			return fmt.Errorf("insert parameter %q: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

type parameterRow struct {
	Name  string  `db:"name"`
	Value float64 `db:"value"`
}

func parameterRows(o domain.ParameterOverrides) []parameterRow {
	var rows []parameterRow
	add := func(name string, v *float64) {
		if v != nil {
			rows = append(rows, parameterRow{Name: name, Value: *v})
		}
	}
	add("voltage_v", o.VoltageV)
	add("autonomy_days", o.AutonomyDays)
	add("simultaneity", o.Simultaneity)
	add("safety_margin", o.SafetyMargin)
	add("efficiency", o.Efficiency)
	return rows
}

func (r *Repos) CatalogParameters(ctx context.Context) (domain.ParameterOverrides, error) {
	var rows []parameterRow
	var o domain.ParameterOverrides
	if err := r.db.SelectContext(ctx, &rows, `SELECT name, value FROM catalog_parameters`); err != nil {
		return o, err
	}
	for _, row := range rows {
		v := row.Value
		switch row.Name {
		case "voltage_v":
			o.VoltageV = &v
		case "autonomy_days":
			o.AutonomyDays = &v
		case "simultaneity":
			o.Simultaneity = &v
		case "safety_margin":
			o.SafetyMargin = &v
		case "efficiency":
			o.Efficiency = &v
		}
	}
	return o, nil
}

// LoadCatalog reads the whole stored catalog.
func (r *Repos) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	var (
		cat domain.Catalog
		err error
	)
	if cat.Equipment, err = r.ListEquipment(ctx); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	if cat.Inverters, err = r.ListInverters(ctx); err != nil {
		return nil, fmt.Errorf("list inverters: %w", err)
	}
	if cat.Batteries, err = r.ListBatteries(ctx); err != nil {
		return nil, fmt.Errorf("list batteries: %w", err)
	}
	if cat.Parameters, err = r.CatalogParameters(ctx); err != nil {
		return nil, fmt.Errorf("catalog parameters: %w", err)
	}
	return &cat, nil
}

type runRow struct {
	ID          string         `db:"id"`
	CreatedAt   time.Time      `db:"created_at"`
	Params      []byte         `db:"params"`
	Policy      string         `db:"policy"`
	UnitVoltage float64        `db:"unit_voltage"`
	Loads       []byte         `db:"loads"`
	Summary     []byte         `db:"summary"`
	Inverters   []byte         `db:"inverters"`
	Batteries   []byte         `db:"batteries"`
	ReportURL   sql.NullString `db:"report_url"`
}

const runColumns = `id, created_at, params, policy, unit_voltage, loads, summary, inverters, batteries, report_url`

func (r *Repos) SaveRun(ctx context.Context, run *domain.SizingRun) error {
	row := runRow{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		Policy:      run.Policy,
		UnitVoltage: run.UnitVoltage,
		ReportURL:   sql.NullString{String: run.ReportURL, Valid: run.ReportURL != ""},
	}
	var err error
	for _, f := range []struct {
		dst *[]byte
		src any
	}{
		{&row.Params, run.Params},
		{&row.Loads, run.Loads},
		{&row.Summary, run.Summary},
		{&row.Inverters, run.Inverters},
		{&row.Batteries, run.Batteries},
	} {
		if *f.dst, err = json.Marshal(f.src); err != nil {
			return fmt.Errorf("encode run %s: %w", run.ID, err)
		}
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO sizing_runs (`+runColumns+`)
		VALUES (:id, :created_at, :params, :policy, :unit_voltage, :loads, :summary, :inverters, :batteries, :report_url)`, row)
	return err
}

func (r *Repos) GetRun(ctx context.Context, id string) (*domain.SizingRun, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM sizing_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.decode()
}

// ListRuns returns the most recent runs first.
func (r *Repos) ListRuns(ctx context.Context, limit int) ([]domain.SizingRun, error) {
	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+runColumns+` FROM sizing_runs ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, err
	}
	out := make([]domain.SizingRun, 0, len(rows))
	for _, row := range rows {
		run, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, nil
}

func (row runRow) decode() (*domain.SizingRun, error) {
	run := &domain.SizingRun{
		ID:          row.ID,
		CreatedAt:   row.CreatedAt,
		Policy:      row.Policy,
		UnitVoltage: row.UnitVoltage,
		ReportURL:   row.ReportURL.String,
	}
	for _, f := range []struct {
		src []byte
		dst any
	}{
		{row.Params, &run.Params},
		{row.Loads, &run.Loads},
		{row.Summary, &run.Summary},
		{row.Inverters, &run.Inverters},
		{row.Batteries, &run.Batteries},
	} {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", row.ID, err)
		}
	}
	return run, nil
}
