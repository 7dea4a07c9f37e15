package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

func Connect(dsn string) (*sqlx.DB, error) {
	return sqlx.Connect("pgx", dsn)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS equipment (
		id          BIGSERIAL PRIMARY KEY,
		position    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		power_w     DOUBLE PRECISION NOT NULL,
		peak_factor DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inverter_models (
		id           BIGSERIAL PRIMARY KEY,
		position     INTEGER NOT NULL,
		name         TEXT NOT NULL,
		nominal_kw   DOUBLE PRECISION NOT NULL,
		peak_kw      DOUBLE PRECISION NOT NULL,
		max_parallel INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS battery_models (
		id             BIGSERIAL PRIMARY KEY,
		position       INTEGER NOT NULL,
		name           TEXT NOT NULL,
		dod_pct        DOUBLE PRECISION NOT NULL,
		efficiency_pct DOUBLE PRECISION NOT NULL,
		capacity_ah    DOUBLE PRECISION NOT NULL,
		max_series     INTEGER NOT NULL,
		max_parallel   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_parameters (
		name  TEXT PRIMARY KEY,
		value DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sizing_runs (
		id           TEXT PRIMARY KEY,
		created_at   TIMESTAMPTZ NOT NULL,
		params       JSONB NOT NULL,
		policy       TEXT NOT NULL,
		unit_voltage DOUBLE PRECISION NOT NULL,
		loads        JSONB NOT NULL,
		summary      JSONB NOT NULL,
		inverters    JSONB NOT NULL,
		batteries    JSONB NOT NULL,
		report_url   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS sizing_runs_created_at_idx ON sizing_runs (created_at DESC)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("schema up to date")
	return nil
}
