package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QualityIssue is one logged data-quality finding.
type QualityIssue struct {
	Date          time.Time
	Column        string
	IssueType     string
	ValueFound    string
	ExpectedRange string
	Severity      string
}

// PipelineRun is one logged ingestion run.
type PipelineRun struct {
	ID               int64
	RunDate          time.Time
	Status           string
	RecordsProcessed int
	RecordsFailed    int
	MissingRate      *float64
	Anomalies        int
	ErrorMessage     *string
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// QualityRepository persists the data-quality audit trail and pipeline run
// history.
type QualityRepository struct {
	pool *pgxpool.Pool
}

// NewQualityRepository creates a new quality repository.
func NewQualityRepository(pool *pgxpool.Pool) *QualityRepository {
	return &QualityRepository{pool: pool}
}

// LogIssue records one quality finding.
func (r *QualityRepository) LogIssue(ctx context.Context, issue QualityIssue) error {
	query := `
		INSERT INTO data_quality_log (date, column_name, issue_type, value_found, expected_range, severity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		issue.Date, issue.Column, issue.IssueType,
		issue.ValueFound, issue.ExpectedRange, issue.Severity,
	)
	if err != nil {
		return fmt.Errorf("failed to log quality issue: %w", err)
	}
	return nil
}

// LogRun records one pipeline execution and returns its id.
func (r *QualityRepository) LogRun(ctx context.Context, run PipelineRun) (int64, error) {
	query := `
		INSERT INTO pipeline_runs (
			run_date, status, records_processed, records_failed,
			missing_rate, anomalies_detected, error_message, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		run.RunDate, run.Status, run.RecordsProcessed, run.RecordsFailed,
		run.MissingRate, run.Anomalies, run.ErrorMessage, run.StartedAt, run.CompletedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to log pipeline run: %w", err)
	}
	return id, nil
}

// RecentIssues returns quality findings for a date, newest first.
func (r *QualityRepository) RecentIssues(ctx context.Context, date time.Time) ([]QualityIssue, error) {
	query := `
		SELECT date, column_name, issue_type, value_found, expected_range, severity
		FROM data_quality_log
		WHERE date = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality issues: %w", err)
	}
	defer rows.Close()

	var issues []QualityIssue
	for rows.Next() {
		var issue QualityIssue
		if err := rows.Scan(
			&issue.Date, &issue.Column, &issue.IssueType,
			&issue.ValueFound, &issue.ExpectedRange, &issue.Severity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quality issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// RecentRuns returns the most recent pipeline runs, newest first.
func (r *QualityRepository) RecentRuns(ctx context.Context, limit int) ([]PipelineRun, error) {
	query := `
		SELECT id, run_date, status, records_processed, records_failed,
			missing_rate, anomalies_detected, error_message, started_at, completed_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []PipelineRun
	for rows.Next() {
		var run PipelineRun
		if err := rows.Scan(
			&run.ID, &run.RunDate, &run.Status, &run.RecordsProcessed,
			&run.RecordsFailed, &run.MissingRate, &run.Anomalies,
			&run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
