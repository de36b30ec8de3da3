package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables in dependency order. Obligations cascade
// on deletion of either parent: an obligation is meaningless without both.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id             SERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		sector         TEXT NOT NULL,
		employee_count INTEGER NOT NULL CHECK (employee_count >= 0),
		location_city  TEXT NOT NULL,
		is_exporter    BOOLEAN NOT NULL DEFAULT FALSE,
		unvan          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS regulations (
		id           SERIAL PRIMARY KEY,
		source       TEXT NOT NULL,
		title        TEXT NOT NULL,
		publish_date DATE NOT NULL,
		url          TEXT,
		raw_text     TEXT NOT NULL,
		summary      TEXT,
		tags         TEXT[] NOT NULL DEFAULT '{}',
		sectors      TEXT[] NOT NULL DEFAULT '{}',
		impact_type  TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS obligations (
		id            SERIAL PRIMARY KEY,
		company_id    INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		regulation_id INTEGER NOT NULL REFERENCES regulations(id) ON DELETE CASCADE,
		is_applicable BOOLEAN NOT NULL DEFAULT TRUE,
		is_compliant  BOOLEAN NOT NULL DEFAULT FALSE,
		due_date      DATE,
		risk_level    TEXT NOT NULL DEFAULT 'medium',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_obligations_company ON obligations (company_id) WHERE is_applicable`,
}

// InitSchema creates the tables if they do not exist yet
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
