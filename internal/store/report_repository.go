package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basismind/basismind/internal/contracts"
)

// ReportRepository implements contracts.ReportRepository. The full report is
// stored as JSONB with score and classification denormalized for querying.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new decision report repository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save inserts or replaces the report for its reference date.
func (r *ReportRepository) Save(ctx context.Context, report *contracts.DecisionReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO decision_reports (reference_date, score, classification, report)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reference_date) DO UPDATE SET
			score = EXCLUDED.score,
			classification = EXCLUDED.classification,
			report = EXCLUDED.report
	`

	_, err = r.pool.Exec(ctx, query,
		report.ReferenceDate.Time, report.Score, string(report.Classification), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save report for %s: %w", report.ReferenceDate, err)
	}
	return nil
}

// GetLatest returns the most recent report, or nil when none exist.
func (r *ReportRepository) GetLatest(ctx context.Context) (*contracts.DecisionReport, error) {
	query := `
		SELECT report FROM decision_reports
		ORDER BY reference_date DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query)
}

// GetByDate returns the report for a reference date, or nil when absent.
func (r *ReportRepository) GetByDate(ctx context.Context, date time.Time) (*contracts.DecisionReport, error) {
	query := `
		SELECT report FROM decision_reports
		WHERE reference_date = $1
	`
	return r.queryOne(ctx, query, date)
}

// List returns reports within [from, to], oldest first.
func (r *ReportRepository) List(ctx context.Context, from, to time.Time) ([]*contracts.DecisionReport, error) {
	query := `
		SELECT report FROM decision_reports
		WHERE reference_date BETWEEN $1 AND $2
		ORDER BY reference_date ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*contracts.DecisionReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report contracts.DecisionReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*contracts.DecisionReport, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, query, args...).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report contracts.DecisionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
