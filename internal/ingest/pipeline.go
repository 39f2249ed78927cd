package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/store"
	"github.com/basismind/basismind/pkg/logger"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// historyLookbackDays bounds the anomaly-detection window.
const historyLookbackDays = 180

// PipelineResult summarizes one ingestion run.
type PipelineResult struct {
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Missing   float64   `json:"missing_rate"`
	Anomalies int       `json:"anomalies"`
	Errors    []string  `json:"errors,omitempty"`
}

// QualityLog records quality findings and run outcomes. Implemented by
// store.QualityRepository.
type QualityLog interface {
	LogIssue(ctx context.Context, issue store.QualityIssue) error
	LogRun(ctx context.Context, run store.PipelineRun) (int64, error)
}

// HistorySource supplies recent column series for anomaly detection.
type HistorySource interface {
	Series(ctx context.Context, column string, limit int) ([]float64, error)
}

// Pipeline fetches one day of data from the first source that has it,
// enriches missing columns from secondary sources, validates the row and
// persists it together with a quality audit trail.
type Pipeline struct {
	sources   []DataSource
	enrichers []DataSource
	market    contracts.MarketDataRepository
	history   HistorySource
	quality   QualityLog
	log       *logger.Logger
}

// NewPipeline creates an ingestion pipeline. At least one source is
// required; enrichers, history and quality logging are optional.
func NewPipeline(
	sources []DataSource,
	market contracts.MarketDataRepository,
	log *logger.Logger,
) (*Pipeline, error) {
	if len(sources) == 0 {
		return nil, errors.New("at least one data source is required")
	}
	return &Pipeline{sources: sources, market: market, log: log}, nil
}

// WithEnrichers adds sources that fill columns the primary source left nil.
func (p *Pipeline) WithEnrichers(enrichers ...DataSource) *Pipeline {
	p.enrichers = append(p.enrichers, enrichers...)
	return p
}

// WithHistory enables historical anomaly detection.
func (p *Pipeline) WithHistory(history HistorySource) *Pipeline {
	p.history = history
	return p
}

// WithQualityLog enables the persistent quality audit trail.
func (p *Pipeline) WithQualityLog(quality QualityLog) *Pipeline {
	p.quality = quality
	return p
}

// Run executes the pipeline for one date.
func (p *Pipeline) Run(ctx context.Context, date time.Time) PipelineResult {
	startedAt := time.Now()

	row, err := p.fetch(ctx, date)
	if err != nil {
		p.log.WithError(err).Error("All data sources failed")
		result := PipelineResult{
			Date:    date,
			Status:  StatusFailed,
			Failed:  1,
			Missing: 1.0,
			Errors:  []string{err.Error()},
		}
		p.logRun(ctx, date, result, startedAt)
		return result
	}

	p.enrich(ctx, date, row)

	issues := ValidateRow(row, p.historyLookup(ctx))
	anomalies := 0
	var errorMsgs []string
	for _, issue := range issues {
		if issue.IssueType == IssueAnomaly {
			anomalies++
		}
		msg := fmt.Sprintf("[%s] %s", issue.Severity, issue.Message)
		errorMsgs = append(errorMsgs, msg)
		p.log.WithFields(map[string]interface{}{
			"column":   issue.Column,
			"type":     issue.IssueType,
			"severity": issue.Severity,
		}).Warn(issue.Message)
		p.logIssue(ctx, date, issue)
	}

	missing := MissingRate(row)
	if missing > MaxMissingRate {
		p.log.Warnf("Missing rate %.1f%% > threshold %.1f%%", missing*100, MaxMissingRate*100)
	}

	result := PipelineResult{
		Date:      date,
		Processed: 1,
		Missing:   missing,
		Anomalies: anomalies,
		Errors:    errorMsgs,
	}

	if HasBlockingIssue(issues) {
		result.Status = StatusFailed
		result.Failed = 1
	} else if err := p.market.Upsert(ctx, row); err != nil {
		p.log.WithError(err).Error("Failed to persist market data")
		result.Status = StatusFailed
		result.Failed = 1
		result.Errors = append(result.Errors, err.Error())
	} else if len(errorMsgs) > 0 {
		result.Status = StatusPartial
	} else {
		result.Status = StatusSuccess
	}

	p.logRun(ctx, date, result, startedAt)
	return result
}

// RunBatch executes the pipeline for each date in order.
func (p *Pipeline) RunBatch(ctx context.Context, dates []time.Time) []PipelineResult {
	results := make([]PipelineResult, 0, len(dates))
	for _, date := range dates {
		result := p.Run(ctx, date)
		results = append(results, result)
		p.log.WithFields(map[string]interface{}{
			"date":   date.Format("2006-01-02"),
			"status": result.Status,
		}).Info("Ingestion run finished")
	}
	return results
}

func (p *Pipeline) fetch(ctx context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	var errs []string
	for _, source := range p.sources {
		row, err := source.Fetch(ctx, date)
		if err == nil {
			p.log.WithField("source", source.Name()).Debug("Data fetched")
			return row, nil
		}
		p.log.WithError(err).WithField("source", source.Name()).Warn("Source failed")
		errs = append(errs, fmt.Sprintf("%s: %v", source.Name(), err))
	}
	return nil, fmt.Errorf("all sources failed: %s", strings.Join(errs, "; "))
}

// enrich fills nil columns from the enricher sources. Enricher failures are
// logged and skipped; the primary row stands on its own.
func (p *Pipeline) enrich(ctx context.Context, date time.Time, row *contracts.MarketDataRow) {
	for _, enricher := range p.enrichers {
		extra, err := enricher.Fetch(ctx, date)
		if err != nil {
			p.log.WithError(err).WithField("source", enricher.Name()).Warn("Enricher failed")
			continue
		}
		mergeRow(row, extra)
	}
}

func mergeRow(dst, src *contracts.MarketDataRow) {
	if dst.PremiumParanagua == nil {
		dst.PremiumParanagua = src.PremiumParanagua
	}
	if dst.ChicagoFront == nil {
		dst.ChicagoFront = src.ChicagoFront
	}
	if dst.USDBRL == nil {
		dst.USDBRL = src.USDBRL
	}
	if dst.FOBParanagua == nil {
		dst.FOBParanagua = src.FOBParanagua
	}
	if dst.FOBUSGulf == nil {
		dst.FOBUSGulf = src.FOBUSGulf
	}
	if dst.LineupGross == nil {
		dst.LineupGross = src.LineupGross
	}
	if dst.LineupNet == nil {
		dst.LineupNet = src.LineupNet
	}
	if dst.Cancellations7D == nil {
		dst.Cancellations7D = src.Cancellations7D
	}
	if dst.ExportsWeeklyTons == nil {
		dst.ExportsWeeklyTons = src.ExportsWeeklyTons
	}
}

func (p *Pipeline) historyLookup(ctx context.Context) func(column string) []float64 {
	if p.history == nil {
		return nil
	}
	return func(column string) []float64 {
		series, err := p.history.Series(ctx, column, historyLookbackDays)
		if err != nil {
			p.log.WithError(err).WithField("column", column).Warn("History lookup failed")
			return nil
		}
		return series
	}
}

func (p *Pipeline) logIssue(ctx context.Context, date time.Time, issue ValidationIssue) {
	if p.quality == nil {
		return
	}
	err := p.quality.LogIssue(ctx, store.QualityIssue{
		Date:          date,
		Column:        issue.Column,
		IssueType:     issue.IssueType,
		ValueFound:    issue.ValueFound,
		ExpectedRange: issue.ExpectedRange,
		Severity:      issue.Severity,
	})
	if err != nil {
		p.log.WithError(err).Warn("Failed to log quality issue")
	}
}

func (p *Pipeline) logRun(ctx context.Context, date time.Time, result PipelineResult, startedAt time.Time) {
	if p.quality == nil {
		return
	}

	completedAt := time.Now()
	var errMsg *string
	if len(result.Errors) > 0 {
		joined := strings.Join(result.Errors, "; ")
		errMsg = &joined
	}
	missing := result.Missing

	_, err := p.quality.LogRun(ctx, store.PipelineRun{
		RunDate:          date,
		Status:           result.Status,
		RecordsProcessed: result.Processed,
		RecordsFailed:    result.Failed,
		MissingRate:      &missing,
		Anomalies:        result.Anomalies,
		ErrorMessage:     errMsg,
		StartedAt:        startedAt,
		CompletedAt:      &completedAt,
	})
	if err != nil {
		p.log.WithError(err).Warn("Failed to log pipeline run")
	}
}
