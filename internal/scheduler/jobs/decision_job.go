package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/basismind/basismind/internal/brain"
	"github.com/basismind/basismind/pkg/logger"
)

// DecisionJob computes and persists the daily decision report once the
// day's market data has been ingested.
type DecisionJob struct {
	orchestrator *brain.Orchestrator
	schedule     string
	log          *logger.Logger
}

func NewDecisionJob(orchestrator *brain.Orchestrator, schedule string, log *logger.Logger) *DecisionJob {
	return &DecisionJob{orchestrator: orchestrator, schedule: schedule, log: log}
}

func (j *DecisionJob) Name() string {
	return "daily-decision"
}

func (j *DecisionJob) Schedule() string {
	return j.schedule
}

func (j *DecisionJob) Run(ctx context.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	report, err := j.orchestrator.Decide(ctx, date, brain.OperatorInputs{})
	if err != nil {
		return fmt.Errorf("failed to compute decision for %s: %w", date.Format("2006-01-02"), err)
	}

	j.log.WithFields(map[string]interface{}{
		"date":           date.Format("2006-01-02"),
		"score":          report.Score,
		"classification": string(report.Classification),
	}).Info("Daily decision finished")
	return nil
}
