// Package store implements the persistence layer on PostgreSQL: raw market
// data, decision reports and the data-quality audit trail.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS market_data (
	date DATE PRIMARY KEY,
	premium_paranagua NUMERIC(10,2),
	chicago_front NUMERIC(10,2),
	usd_brl NUMERIC(10,4),
	fob_paranagua NUMERIC(10,2),
	fob_us_gulf NUMERIC(10,2),
	lineup_gross INTEGER,
	lineup_net INTEGER,
	cancellations_7d INTEGER,
	exports_weekly_tons NUMERIC(15,2),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS decision_reports (
	reference_date DATE PRIMARY KEY,
	score NUMERIC(5,1) NOT NULL,
	classification TEXT NOT NULL,
	report JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS data_quality_log (
	id BIGSERIAL PRIMARY KEY,
	date DATE NOT NULL,
	column_name TEXT NOT NULL,
	issue_type TEXT NOT NULL,
	value_found TEXT,
	expected_range TEXT,
	severity TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_quality_log_date ON data_quality_log(date);
CREATE INDEX IF NOT EXISTS idx_quality_log_type ON data_quality_log(issue_type);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	id BIGSERIAL PRIMARY KEY,
	run_date DATE NOT NULL,
	status TEXT NOT NULL,
	records_processed INTEGER NOT NULL DEFAULT 0,
	records_failed INTEGER NOT NULL DEFAULT 0,
	missing_rate NUMERIC(5,4),
	anomalies_detected INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_date ON pipeline_runs(run_date);
`

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
