package signals

import (
	"math"
	"time"
)

// DemandSignal is the 5-band classification of the export pace z-score.
// DemandUnavailable means the historical sample was too small to judge.
type DemandSignal string

const (
	DemandVeryWeak    DemandSignal = "very_weak"
	DemandWeak        DemandSignal = "weak"
	DemandNormal      DemandSignal = "normal"
	DemandStrong      DemandSignal = "strong"
	DemandVeryStrong  DemandSignal = "very_strong"
	DemandUnavailable DemandSignal = "unavailable"
)

// MinDemandSamples is the minimum same-week history required to compute a
// pace z-score.
const MinDemandSamples = 3

// DemandMetrics is the normalized export demand signal.
type DemandMetrics struct {
	Date          time.Time
	ExportsWeekly float64
	Mean5Y        *float64
	Std5Y         *float64
	ZPace         *float64
	Signal        DemandSignal
}

// ZPace computes the z-score of the current weekly exports against the
// same-week historical sample. Returns nils when fewer than MinDemandSamples
// observations exist; a zero-variance sample yields z = 0.
func ZPace(exportsWeekly float64, historicalSameWeek []float64) (avg, std, z *float64) {
	if len(historicalSameWeek) < MinDemandSamples {
		return nil, nil, nil
	}

	m := mean(historicalSameWeek)
	s := stdev(historicalSameWeek)

	var zv float64
	if s != 0 {
		zv = math.Round((exportsWeekly-m)/s*100) / 100
	}
	return &m, &s, &zv
}

// ClassifyDemand maps a pace z-score to its 5-band signal using cut points
// at ±0.5 and ±1.5.
func ClassifyDemand(zPace *float64) DemandSignal {
	if zPace == nil {
		return DemandUnavailable
	}
	switch z := *zPace; {
	case z < -1.5:
		return DemandVeryWeak
	case z < -0.5:
		return DemandWeak
	case z < 0.5:
		return DemandNormal
	case z < 1.5:
		return DemandStrong
	default:
		return DemandVeryStrong
	}
}

// ComputeDemandMetrics assembles the demand signal from current weekly
// exports and the 5-year same-week sample.
func ComputeDemandMetrics(date time.Time, exportsWeekly float64, historicalSameWeek5Y []float64) DemandMetrics {
	avg, std, z := ZPace(exportsWeekly, historicalSameWeek5Y)

	return DemandMetrics{
		Date:          date,
		ExportsWeekly: exportsWeekly,
		Mean5Y:        avg,
		Std5Y:         std,
		ZPace:         z,
		Signal:        ClassifyDemand(z),
	}
}
