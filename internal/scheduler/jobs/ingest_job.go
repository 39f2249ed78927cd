package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/basismind/basismind/internal/ingest"
	"github.com/basismind/basismind/pkg/logger"
)

// IngestJob runs the daily market data pipeline for the current date.
type IngestJob struct {
	pipeline *ingest.Pipeline
	schedule string
	log      *logger.Logger
}

func NewIngestJob(pipeline *ingest.Pipeline, schedule string, log *logger.Logger) *IngestJob {
	return &IngestJob{pipeline: pipeline, schedule: schedule, log: log}
}

func (j *IngestJob) Name() string {
	return "daily-ingest"
}

func (j *IngestJob) Schedule() string {
	return j.schedule
}

func (j *IngestJob) Run(ctx context.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	result := j.pipeline.Run(ctx, date)

	if result.Status == ingest.StatusFailed {
		return fmt.Errorf("ingestion failed for %s", date.Format("2006-01-02"))
	}

	j.log.WithFields(map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"status": result.Status,
	}).Info("Daily ingestion finished")
	return nil
}
