package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/basismind/basismind/internal/alert"
	"github.com/basismind/basismind/internal/brain"
	"github.com/basismind/basismind/pkg/logger"
)

// TriggerJob checks intraday re-evaluation conditions and alerts when
// any of them fires.
type TriggerJob struct {
	orchestrator *brain.Orchestrator
	alerts       *alert.Manager
	schedule     string
	log          *logger.Logger
}

func NewTriggerJob(orchestrator *brain.Orchestrator, alerts *alert.Manager, schedule string, log *logger.Logger) *TriggerJob {
	return &TriggerJob{orchestrator: orchestrator, alerts: alerts, schedule: schedule, log: log}
}

func (j *TriggerJob) Name() string {
	return "trigger-check"
}

func (j *TriggerJob) Schedule() string {
	return j.schedule
}

func (j *TriggerJob) Run(ctx context.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	check, err := j.orchestrator.CheckTriggers(ctx, date, false)
	if err != nil {
		return err
	}

	if !check.Any() {
		j.log.WithField("date", date.Format("2006-01-02")).Debug("No re-evaluation triggers fired")
		return nil
	}

	reasons := strings.Join(check.Reasons(), " | ")
	j.log.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"reasons": reasons,
	}).Warn("Re-evaluation triggers fired")

	if j.alerts != nil {
		j.alerts.Notifyf(ctx, alert.LevelWarning, "trigger-check",
			"re-evaluation recommended: %s", reasons)
	}
	return nil
}
