// Package brain ties the pipeline together: it reads stored market data,
// normalizes it into signals, builds the observation, runs the decision
// engine and distributes the resulting report.
package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/basismind/basismind/internal/alert"
	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/engine"
	"github.com/basismind/basismind/internal/signals"
	"github.com/basismind/basismind/pkg/logger"
)

// History window parameters.
const (
	premiumHistoryYears = 3
	demandHistoryYears  = 5
)

// OperatorInputs are the inputs no feed provides: port condition readings
// and operator judgment calls.
type OperatorInputs struct {
	WaitTimeDays       *float64
	WaitTimeWeeksAbove int
	LoadingRate        *float64
	ManualEvent        string
	NarrativeConfirmed bool
}

// Broadcaster pushes new reports to connected consumers. Implemented by the
// API's websocket hub.
type Broadcaster interface {
	Broadcast(report *contracts.DecisionReport)
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	contracts.MarketDataRepository
	contracts.HistoryProvider
}

// Orchestrator runs the daily decision workflow.
type Orchestrator struct {
	store       Store
	reports     contracts.ReportRepository
	engine      *engine.Engine
	alerts      *alert.Manager
	broadcaster Broadcaster
	log         *logger.Logger
}

// New creates an orchestrator. Alerts and broadcaster are optional.
func New(
	store Store,
	reports contracts.ReportRepository,
	eng *engine.Engine,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{store: store, reports: reports, engine: eng, log: log}
}

// WithAlerts enables alert dispatch on overrides and triggers.
func (o *Orchestrator) WithAlerts(mgr *alert.Manager) *Orchestrator {
	o.alerts = mgr
	return o
}

// WithBroadcaster enables report push to live consumers.
func (o *Orchestrator) WithBroadcaster(b Broadcaster) *Orchestrator {
	o.broadcaster = b
	return o
}

// BuildObservation normalizes the stored data for a date into the pipeline's
// observation. It fails when the day's row is missing or lacks the required
// columns; optional signals degrade to their documented defaults.
func (o *Orchestrator) BuildObservation(ctx context.Context, date time.Time, operator OperatorInputs) (*contracts.MarketObservation, error) {
	row, err := o.store.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load market data: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("no market data for %s", date.Format("2006-01-02"))
	}
	if row.PremiumParanagua == nil {
		return nil, fmt.Errorf("missing premium for %s", date.Format("2006-01-02"))
	}
	if row.FOBParanagua == nil || row.FOBUSGulf == nil {
		return nil, fmt.Errorf("missing FOB quotes for %s", date.Format("2006-01-02"))
	}
	if row.ChicagoFront == nil {
		return nil, fmt.Errorf("missing reference price for %s", date.Format("2006-01-02"))
	}

	obs := contracts.MarketObservation{
		ReferenceDate:      contracts.DateOf(date),
		NarrativeConfirmed: operator.NarrativeConfirmed,
	}

	// Premium percentile against the regime-matched history.
	regime := signals.RegimeOf(date)
	premiumHistory, err := o.store.SeriesByRegime(
		ctx, "premium_paranagua", signals.RegimeMonths(regime), premiumHistoryYears, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load premium history: %w", err)
	}
	premium, err := signals.NormalizePremium(date, *row.PremiumParanagua, premiumHistory)
	if err != nil {
		return nil, err
	}
	obs.PremiumPercentile = premium.Percentile
	if premium.LowConfidence {
		o.log.WithFields(map[string]interface{}{
			"date":    date.Format("2006-01-02"),
			"samples": premium.HistoricalCount,
		}).Warn("Premium percentile computed from a thin history")
	}

	// Weekly line-up change from last week's stored net value.
	if row.LineupNet != nil {
		weekAgo, err := o.store.GetByDate(ctx, date.AddDate(0, 0, -7))
		if err != nil {
			return nil, fmt.Errorf("failed to load prior-week line-up: %w", err)
		}
		var netWeekAgo *int
		if weekAgo != nil {
			netWeekAgo = weekAgo.LineupNet
		}
		obs.LineupWeeklyChangePct = signals.WeeklyChange(*row.LineupNet, netWeekAgo)
	}

	// Freight-adjusted FOB spread.
	comp := signals.ComputeCompetitiveness(date, *row.FOBParanagua, *row.FOBUSGulf, nil, nil)
	obs.SpreadAdjusted = comp.SpreadAdjusted

	// Export demand pace vs the same ISO week in history.
	if row.ExportsWeeklyTons != nil {
		sameWeek, err := o.store.ExportsSameWeek(ctx, date, demandHistoryYears)
		if err != nil {
			return nil, fmt.Errorf("failed to load same-week exports: %w", err)
		}
		demand := signals.ComputeDemandMetrics(date, *row.ExportsWeeklyTons, sameWeek)
		obs.DemandZPace = demand.ZPace
	}

	// FX 5-day change.
	if row.USDBRL != nil {
		fx5dAgo, err := o.store.GetValueDaysAgo(ctx, "usd_brl", date, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior FX quote: %w", err)
		}
		fx := signals.ComputeFXMetrics(date, *row.USDBRL, fx5dAgo, nil)
		obs.FXChange5DPct = fx.Var5D
	}

	// Reference price percentile and spike.
	chicagoHistory, err := o.store.Series(ctx, "chicago_front", signals.ChicagoLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference price history: %w", err)
	}
	chicago5dAgo, err := o.store.GetValueDaysAgo(ctx, "chicago_front", date, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior reference price: %w", err)
	}
	chicago := signals.ComputeChicagoMetrics(date, *row.ChicagoFront, chicagoHistory, chicago5dAgo)
	obs.ReferencePercentile = chicago.Percentile
	obs.ReferenceSpike = chicago.SpeculativeSpike

	// Logistics restriction from operator readings.
	flag := signals.ComputeLogisticsFlag(
		operator.WaitTimeDays, operator.WaitTimeWeeksAbove,
		operator.LoadingRate, operator.ManualEvent)
	obs.LogisticsActive = flag.Active
	obs.LogisticsReason = flag.Reason

	return &obs, nil
}

// Decide builds the observation for a date, runs the engine, persists the
// report and distributes it.
func (o *Orchestrator) Decide(ctx context.Context, date time.Time, operator OperatorInputs) (*contracts.DecisionReport, error) {
	obs, err := o.BuildObservation(ctx, date, operator)
	if err != nil {
		return nil, err
	}

	report := o.engine.Run(*obs)

	if err := o.reports.Save(ctx, &report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	if o.broadcaster != nil {
		o.broadcaster.Broadcast(&report)
	}
	o.notify(ctx, &report)

	return &report, nil
}

// CheckTriggers evaluates whether the market has moved enough since the last
// run to warrant an off-schedule decision.
func (o *Orchestrator) CheckTriggers(ctx context.Context, date time.Time, logisticsActive bool) (engine.TriggerCheck, error) {
	var check engine.TriggerCheck

	lineupNow, lineupPrior, err := o.lineupChanges(ctx, date)
	if err != nil {
		return check, err
	}

	premiumMove, err := o.premiumZMove(ctx, date)
	if err != nil {
		return check, err
	}

	chicagoWeekly, err := o.chicagoWeeklyChange(ctx, date)
	if err != nil {
		return check, err
	}

	check = engine.CheckTriggers(lineupNow, lineupPrior, premiumMove, logisticsActive, chicagoWeekly)
	if check.Any() {
		o.log.WithField("reasons", check.Reasons()).Info("Re-evaluation triggers fired")
	}
	return check, nil
}

func (o *Orchestrator) lineupChanges(ctx context.Context, date time.Time) (now, prior *float64, err error) {
	nets := make([]*int, 3)
	for i, daysAgo := range []int{0, 7, 14} {
		row, err := o.store.GetByDate(ctx, date.AddDate(0, 0, -daysAgo))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load line-up history: %w", err)
		}
		if row != nil {
			nets[i] = row.LineupNet
		}
	}

	if nets[0] != nil {
		now = signals.WeeklyChange(*nets[0], nets[1])
	}
	if nets[1] != nil {
		prior = signals.WeeklyChange(*nets[1], nets[2])
	}
	return now, prior, nil
}

func (o *Orchestrator) premiumZMove(ctx context.Context, date time.Time) (*float64, error) {
	row, err := o.store.GetByDate(ctx, date)
	if err != nil || row == nil || row.PremiumParanagua == nil {
		return nil, err
	}

	history, err := o.store.Series(ctx, "premium_paranagua", signals.ChicagoLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load premium series: %w", err)
	}
	prior, err := o.store.GetValueDaysAgo(ctx, "premium_paranagua", date, 7)
	if err != nil || prior == nil {
		return nil, err
	}

	_, std, _ := signals.ZPace(*row.PremiumParanagua, history)
	if std == nil || *std == 0 {
		return nil, nil
	}
	move := (*row.PremiumParanagua - *prior) / *std
	return &move, nil
}

func (o *Orchestrator) chicagoWeeklyChange(ctx context.Context, date time.Time) (*float64, error) {
	row, err := o.store.GetByDate(ctx, date)
	if err != nil || row == nil || row.ChicagoFront == nil {
		return nil, err
	}
	prior, err := o.store.GetValueDaysAgo(ctx, "chicago_front", date, 7)
	if err != nil {
		return nil, err
	}
	return signals.ChangePct(*row.ChicagoFront, prior), nil
}

// notify raises alerts for the conditions a desk wants pushed, not polled.
func (o *Orchestrator) notify(ctx context.Context, report *contracts.DecisionReport) {
	if o.alerts == nil {
		return
	}

	if report.DominantOverride != nil {
		level := alert.LevelWarning
		if *report.DominantOverride == contracts.OverrideLogistics {
			level = alert.LevelCritical
		}
		o.alerts.Notify(ctx, alert.Alert{
			Level:   level,
			Source:  "decision",
			Message: fmt.Sprintf("override active: %s", *report.DominantOverride),
			Details: map[string]interface{}{
				"date":     report.ReferenceDate.String(),
				"score":    report.Score,
				"physical": string(report.Physical.Action),
				"hedge":    string(report.Hedge.Action),
			},
		})
	}

	if report.ModulationApplied && report.ModulationReason != nil {
		o.alerts.Notifyf(ctx, alert.LevelInfo, "decision",
			"book limits modulated the recommendation: %s", *report.ModulationReason)
	}
}
