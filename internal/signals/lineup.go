package signals

import (
	"fmt"
	"math"
	"time"
)

// LineupTrend is the 5-band weekly trend of the net vessel line-up.
// TrendUnknown means no comparable prior-week value exists; the scoring step
// defaults unknown to the neutral midpoint instead of erroring.
type LineupTrend string

const (
	TrendStrongDrop LineupTrend = "strong_drop"
	TrendDrop       LineupTrend = "drop"
	TrendStable     LineupTrend = "stable"
	TrendRise       LineupTrend = "rise"
	TrendStrongRise LineupTrend = "strong_rise"
	TrendUnknown    LineupTrend = "unknown"
)

// Line-up trend cut points, in weekly percent change.
const (
	trendStrongDropCut = -15.0
	trendDropCut       = -5.0
	trendRiseCut       = 5.0
	trendStrongRiseCut = 15.0
)

// LineupDropThreshold is the weekly change below which the line-up counts as
// dropping for override purposes.
const LineupDropThreshold = -10.0

// LineupMetrics is the normalized line-up signal.
type LineupMetrics struct {
	Date             time.Time
	Gross            int
	Net              int
	Cancellations7D  int
	CancellationRate float64
	WeeklyChangePct  *float64
	Trend            LineupTrend
	Valid            bool
	ValidationErrors []string
}

// NetLineup derives net line-up from gross minus cancellations and
// postponements, floored at zero.
func NetLineup(gross, cancelled, postponed int) int {
	net := gross - cancelled - postponed
	if net < 0 {
		return 0
	}
	return net
}

// CancellationRate computes the 7-day cancellation+postponement rate against
// the gross line-up a week ago, clamped to [0,100].
func CancellationRate(cancelled7d, postponed7d, grossWeekAgo int) float64 {
	if grossWeekAgo <= 0 {
		return 0
	}
	rate := float64(cancelled7d+postponed7d) / float64(grossWeekAgo) * 100
	rate = math.Max(0, math.Min(100, rate))
	return math.Round(rate*100) / 100
}

// WeeklyChange computes the week-over-week percentage change of net line-up.
// Returns nil when there is no usable prior-week value.
func WeeklyChange(netCurrent int, netWeekAgo *int) *float64 {
	if netWeekAgo == nil || *netWeekAgo <= 0 {
		return nil
	}
	change := float64(netCurrent-*netWeekAgo) / float64(*netWeekAgo) * 100
	change = math.Round(change*100) / 100
	return &change
}

// ClassifyTrend maps a weekly change to the 5-band trend.
func ClassifyTrend(weeklyChangePct *float64) LineupTrend {
	if weeklyChangePct == nil {
		return TrendUnknown
	}
	switch v := *weeklyChangePct; {
	case v < trendStrongDropCut:
		return TrendStrongDrop
	case v < trendDropCut:
		return TrendDrop
	case v < trendRiseCut:
		return TrendStable
	case v < trendStrongRiseCut:
		return TrendRise
	default:
		return TrendStrongRise
	}
}

// IsLineupDropping reports whether the weekly change crosses the override
// drop threshold. Unknown changes never count as dropping.
func IsLineupDropping(weeklyChangePct *float64) bool {
	return weeklyChangePct != nil && *weeklyChangePct < LineupDropThreshold
}

// validateLineup checks the arithmetic consistency of one day's line-up row.
func validateLineup(gross, net int) []string {
	var errs []string
	if net > gross {
		errs = append(errs, fmt.Sprintf("net line-up (%d) > gross line-up (%d)", net, gross))
	}
	if gross < 0 {
		errs = append(errs, fmt.Sprintf("negative gross line-up: %d", gross))
	}
	if net < 0 {
		errs = append(errs, fmt.Sprintf("negative net line-up: %d", net))
	}
	return errs
}

// ComputeLineupMetrics assembles the full line-up signal for one day.
// grossWeekAgo and netWeekAgo are nil when last week's row is missing.
func ComputeLineupMetrics(
	date time.Time,
	gross, net, cancellations7d int,
	grossWeekAgo, netWeekAgo *int,
	postponed7d int,
) LineupMetrics {
	validationErrors := validateLineup(gross, net)

	var cancellationRate float64
	if grossWeekAgo != nil {
		cancellationRate = CancellationRate(cancellations7d, postponed7d, *grossWeekAgo)
	}

	weeklyChange := WeeklyChange(net, netWeekAgo)

	return LineupMetrics{
		Date:             date,
		Gross:            gross,
		Net:              net,
		Cancellations7D:  cancellations7d,
		CancellationRate: cancellationRate,
		WeeklyChangePct:  weeklyChange,
		Trend:            ClassifyTrend(weeklyChange),
		Valid:            len(validationErrors) == 0,
		ValidationErrors: validationErrors,
	}
}
