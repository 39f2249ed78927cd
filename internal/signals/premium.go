package signals

import (
	"fmt"
	"math"
	"time"
)

// Regime is the calendar-based classification used to select a comparable
// premium history: harvest season vs off-season.
type Regime string

const (
	RegimeHarvest   Regime = "harvest"
	RegimeOffSeason Regime = "off_season"
)

// Harvest months for the reference origin (March through July).
var harvestMonths = map[time.Month]bool{
	time.March: true, time.April: true, time.May: true,
	time.June: true, time.July: true,
}

// MinPremiumSamples is the history size below which the percentile is still
// computed but flagged as low-confidence.
const MinPremiumSamples = 30

// PremiumClass is the 5-band classification of the premium percentile.
type PremiumClass string

const (
	PremiumVeryLow  PremiumClass = "very_low"
	PremiumLow      PremiumClass = "low"
	PremiumNeutral  PremiumClass = "neutral"
	PremiumHigh     PremiumClass = "high"
	PremiumVeryHigh PremiumClass = "very_high"
)

// PremiumResult is the normalized premium signal.
type PremiumResult struct {
	Date            time.Time
	PremiumRaw      float64
	Regime          Regime
	Percentile      float64
	Classification  PremiumClass
	HistoricalCount int

	// LowConfidence marks a result computed from fewer than MinPremiumSamples
	// observations. Soft degradation: the result is still usable.
	LowConfidence bool
}

// RegimeOf classifies a date into harvest or off-season.
func RegimeOf(date time.Time) Regime {
	if harvestMonths[date.Month()] {
		return RegimeHarvest
	}
	return RegimeOffSeason
}

// RegimeMonths returns the calendar months belonging to a regime.
func RegimeMonths(regime Regime) []time.Month {
	if regime == RegimeHarvest {
		return []time.Month{time.March, time.April, time.May, time.June, time.July}
	}
	return []time.Month{
		time.January, time.February, time.August, time.September,
		time.October, time.November, time.December,
	}
}

// Percentile computes the rank-based percentile of value within historical,
// splitting ties: (count below + half the count equal) / n * 100.
// Fails on an empty sample; that is the caller's input-validation error.
func Percentile(value float64, historical []float64) (float64, error) {
	if len(historical) == 0 {
		return 0, fmt.Errorf("empty historical sample for percentile computation")
	}
	return rankPercentile(value, historical), nil
}

// rankPercentile is the tie-splitting rank percentile, rounded to 2 decimals.
func rankPercentile(value float64, historical []float64) float64 {
	var below, equal int
	for _, h := range historical {
		switch {
		case h < value:
			below++
		case h == value:
			equal++
		}
	}
	p := (float64(below) + 0.5*float64(equal)) / float64(len(historical)) * 100
	return math.Round(p*100) / 100
}

// ClassifyPremium maps a percentile to its 5-band classification.
func ClassifyPremium(percentile float64) PremiumClass {
	switch {
	case percentile < 20:
		return PremiumVeryLow
	case percentile < 40:
		return PremiumLow
	case percentile < 60:
		return PremiumNeutral
	case percentile < 80:
		return PremiumHigh
	default:
		return PremiumVeryHigh
	}
}

// NormalizePremium converts a raw premium into a regime-relative percentile.
// The historical sample must already be regime-matched by the caller.
func NormalizePremium(date time.Time, premium float64, historicalByRegime []float64) (PremiumResult, error) {
	regime := RegimeOf(date)

	percentile, err := Percentile(premium, historicalByRegime)
	if err != nil {
		return PremiumResult{}, fmt.Errorf("premium normalization for %s: %w", date.Format("2006-01-02"), err)
	}

	return PremiumResult{
		Date:            date,
		PremiumRaw:      premium,
		Regime:          regime,
		Percentile:      percentile,
		Classification:  ClassifyPremium(percentile),
		HistoricalCount: len(historicalByRegime),
		LowConfidence:   len(historicalByRegime) < MinPremiumSamples,
	}, nil
}
