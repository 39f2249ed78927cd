package signals

import (
	"math"
	"time"
)

// CompetitivenessClass is the 5-band classification of the freight-adjusted
// spread. Negative spreads favor the domestic origin.
type CompetitivenessClass string

const (
	CompetitivenessVeryCheap     CompetitivenessClass = "very_cheap"
	CompetitivenessCheap         CompetitivenessClass = "cheap"
	CompetitivenessNeutral       CompetitivenessClass = "neutral"
	CompetitivenessExpensive     CompetitivenessClass = "expensive"
	CompetitivenessVeryExpensive CompetitivenessClass = "very_expensive"
)

// CriticalSpreadThreshold is the adjusted spread above which the domestic
// origin is considered non-competitive for override purposes.
const CriticalSpreadThreshold = 15.0

// freightAbnormalStd is the |z| threshold flagging the freight adjustment as
// statistically abnormal against its rolling history.
const freightAbnormalStd = 2.0

// Monthly freight seasonal adjustment, USD/ton. Harvest months are negative
// (favorable), the off-season positive (unfavorable).
var freightDifferentialMonthly = map[time.Month]float64{
	time.January:   -8.0,
	time.February:  -10.0,
	time.March:     -12.0,
	time.April:     -10.0,
	time.May:       -6.0,
	time.June:      -2.0,
	time.July:      2.0,
	time.August:    5.0,
	time.September: 8.0,
	time.October:   10.0,
	time.November:  6.0,
	time.December:  0.0,
}

// CompetitivenessResult is the normalized competitiveness signal.
type CompetitivenessResult struct {
	Date              time.Time
	FOBDomestic       float64
	FOBCompetitor     float64
	SpreadFOB         float64
	FreightAdjustment float64
	SpreadAdjusted    float64
	Classification    CompetitivenessClass

	// FreightAbnormal and WeightModifier are informational metadata: the
	// scoring pipeline does not consume the modifier (see DESIGN.md).
	FreightAbnormal bool
	WeightModifier  float64
}

// FreightAdjustment returns the month-indexed seasonal freight differential.
func FreightAdjustment(month time.Month) float64 {
	return freightDifferentialMonthly[month]
}

// SpreadFOB computes the raw FOB spread (domestic minus competitor).
func SpreadFOB(fobDomestic, fobCompetitor float64) float64 {
	return round2(fobDomestic - fobCompetitor)
}

// ClassifyCompetitiveness maps an adjusted spread to its 5-band class.
func ClassifyCompetitiveness(spreadAdjusted float64) CompetitivenessClass {
	switch {
	case spreadAdjusted < -20:
		return CompetitivenessVeryCheap
	case spreadAdjusted < -10:
		return CompetitivenessCheap
	case spreadAdjusted < 10:
		return CompetitivenessNeutral
	case spreadAdjusted < 20:
		return CompetitivenessExpensive
	default:
		return CompetitivenessVeryExpensive
	}
}

// IsFreightAbnormal reports whether the current freight sits more than
// freightAbnormalStd standard deviations from its rolling history. Requires
// at least 10 samples; fewer means no judgment, never an error.
func IsFreightAbnormal(currentFreight float64, historicalFreight []float64) bool {
	if len(historicalFreight) < 10 {
		return false
	}
	avg := mean(historicalFreight)
	std := stdev(historicalFreight)
	if std == 0 {
		return false
	}
	return math.Abs(currentFreight-avg)/std > freightAbnormalStd
}

// IsNotCompetitive reports whether the adjusted spread crosses the critical
// threshold.
func IsNotCompetitive(spreadAdjusted float64) bool {
	return spreadAdjusted > CriticalSpreadThreshold
}

// ComputeCompetitiveness assembles the full competitiveness signal.
// currentFreight/historicalFreight are optional; without them the abnormality
// check is skipped and the weight modifier stays 1.0.
func ComputeCompetitiveness(
	date time.Time,
	fobDomestic, fobCompetitor float64,
	currentFreight *float64,
	historicalFreight []float64,
) CompetitivenessResult {
	spreadFOB := SpreadFOB(fobDomestic, fobCompetitor)
	freightAdj := FreightAdjustment(date.Month())
	spreadAdjusted := round2(spreadFOB + freightAdj)

	abnormal := false
	weightModifier := 1.0
	if currentFreight != nil && len(historicalFreight) > 0 {
		abnormal = IsFreightAbnormal(*currentFreight, historicalFreight)
		if abnormal {
			weightModifier = 0.5
		}
	}

	return CompetitivenessResult{
		Date:              date,
		FOBDomestic:       fobDomestic,
		FOBCompetitor:     fobCompetitor,
		SpreadFOB:         spreadFOB,
		FreightAdjustment: freightAdj,
		SpreadAdjusted:    spreadAdjusted,
		Classification:    ClassifyCompetitiveness(spreadAdjusted),
		FreightAbnormal:   abnormal,
		WeightModifier:    weightModifier,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
