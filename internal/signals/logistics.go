package signals

import (
	"fmt"
	"strings"
)

// Logistics restriction trigger thresholds.
const (
	// WaitTimeThresholdDays is the vessel wait time above which a sustained
	// restriction may be flagged.
	WaitTimeThresholdDays = 15.0
	// WaitTimeConsecutiveWeeks is how many consecutive weeks the wait time
	// must stay above threshold before the flag fires.
	WaitTimeConsecutiveWeeks = 2
	// LoadingRateThreshold is the port loading rate, as a fraction of
	// capacity, below which the flag fires.
	LoadingRateThreshold = 0.70
)

// LogisticsFlag marks an active logistics restriction. Any of the three
// independent triggers raises it; Reason concatenates every firing trigger.
type LogisticsFlag struct {
	Active      bool
	Reason      string
	ManualEvent string
}

// ComputeLogisticsFlag evaluates the three triggers: sustained excess wait
// time, loading-rate shortfall, and a free-text manual event.
func ComputeLogisticsFlag(
	waitTimeDays *float64,
	waitTimeWeeksAbove int,
	loadingRate *float64,
	manualEvent string,
) LogisticsFlag {
	var reasons []string

	if waitTimeDays != nil &&
		*waitTimeDays > WaitTimeThresholdDays &&
		waitTimeWeeksAbove >= WaitTimeConsecutiveWeeks {
		reasons = append(reasons, fmt.Sprintf(
			"vessel wait >%.0fd for %d weeks", WaitTimeThresholdDays, waitTimeWeeksAbove))
	}

	if loadingRate != nil && *loadingRate < LoadingRateThreshold {
		reasons = append(reasons, fmt.Sprintf(
			"loading rate %.0f%% < %.0f%%", *loadingRate*100, LoadingRateThreshold*100))
	}

	if manualEvent != "" {
		reasons = append(reasons, "manual event: "+manualEvent)
	}

	return LogisticsFlag{
		Active:      len(reasons) > 0,
		Reason:      strings.Join(reasons, "; "),
		ManualEvent: manualEvent,
	}
}
