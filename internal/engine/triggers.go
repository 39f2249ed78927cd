package engine

import "fmt"

// Trigger thresholds for an off-schedule re-evaluation.
const (
	TriggerLineupChangePct  = 20.0
	TriggerPremiumStd       = 2.0
	TriggerChicagoChangePct = 5.0
)

// TriggerCheck records which market moves warrant re-running the pipeline
// before the next scheduled run.
type TriggerCheck struct {
	Lineup    bool
	Premium   bool
	Logistics bool
	Chicago   bool
}

// Any reports whether at least one trigger fired.
func (t TriggerCheck) Any() bool {
	return t.Lineup || t.Premium || t.Logistics || t.Chicago
}

// Reasons lists the human-readable description of each fired trigger.
func (t TriggerCheck) Reasons() []string {
	var reasons []string
	if t.Lineup {
		reasons = append(reasons, fmt.Sprintf("line-up moved > %g%%", TriggerLineupChangePct))
	}
	if t.Premium {
		reasons = append(reasons, fmt.Sprintf("premium moved > %g std", TriggerPremiumStd))
	}
	if t.Logistics {
		reasons = append(reasons, "logistics flag raised")
	}
	if t.Chicago {
		reasons = append(reasons, fmt.Sprintf("reference price moved > %g%%", TriggerChicagoChangePct))
	}
	return reasons
}

// CheckTriggers compares the current observation deltas against the trigger
// thresholds. Nil inputs mean the corresponding series had no comparable
// prior value and never fire.
func CheckTriggers(
	lineupChangeNow, lineupChangePrior *float64,
	premiumZScoreMove *float64,
	logisticsActive bool,
	chicagoWeeklyChange *float64,
) TriggerCheck {
	check := TriggerCheck{Logistics: logisticsActive}

	if lineupChangeNow != nil && lineupChangePrior != nil {
		delta := *lineupChangeNow - *lineupChangePrior
		if delta < 0 {
			delta = -delta
		}
		check.Lineup = delta > TriggerLineupChangePct
	}
	if premiumZScoreMove != nil {
		move := *premiumZScoreMove
		if move < 0 {
			move = -move
		}
		check.Premium = move > TriggerPremiumStd
	}
	if chicagoWeeklyChange != nil {
		move := *chicagoWeeklyChange
		if move < 0 {
			move = -move
		}
		check.Chicago = move > TriggerChicagoChangePct
	}
	return check
}
