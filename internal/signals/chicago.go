package signals

import "time"

// ChicagoSignal is the 5-band classification of the reference futures price
// percentile over its rolling window.
type ChicagoSignal string

const (
	ChicagoVeryLow  ChicagoSignal = "very_low"
	ChicagoLow      ChicagoSignal = "low"
	ChicagoNeutral  ChicagoSignal = "neutral"
	ChicagoHigh     ChicagoSignal = "high"
	ChicagoVeryHigh ChicagoSignal = "very_high"
)

// SpeculativeSpikeThreshold is the 5-day percentage gain above which the
// reference price move is flagged as a speculative spike.
const SpeculativeSpikeThreshold = 5.0

// ChicagoLookbackDays is the rolling window for the percentile history.
const ChicagoLookbackDays = 180

// ChicagoMetrics is the normalized reference-price signal.
type ChicagoMetrics struct {
	Date             time.Time
	Front            float64
	Percentile       float64
	Signal           ChicagoSignal
	Var5D            *float64
	SpeculativeSpike bool
}

// ClassifyChicago maps a percentile to its 5-band signal using cut points
// at 20/40/60/80.
func ClassifyChicago(percentile float64) ChicagoSignal {
	switch {
	case percentile < 20:
		return ChicagoVeryLow
	case percentile < 40:
		return ChicagoLow
	case percentile < 60:
		return ChicagoNeutral
	case percentile < 80:
		return ChicagoHigh
	default:
		return ChicagoVeryHigh
	}
}

// ComputeChicagoMetrics assembles the reference-price signal. An empty
// history degrades to the neutral midpoint percentile rather than erroring.
func ComputeChicagoMetrics(date time.Time, front float64, historical180d []float64, front5dAgo *float64) ChicagoMetrics {
	percentile := 50.0
	if len(historical180d) > 0 {
		percentile = rankPercentile(front, historical180d)
	}

	var5d := ChangePct(front, front5dAgo)

	spike := var5d != nil && *var5d > SpeculativeSpikeThreshold

	return ChicagoMetrics{
		Date:             date,
		Front:            front,
		Percentile:       percentile,
		Signal:           ClassifyChicago(percentile),
		Var5D:            var5d,
		SpeculativeSpike: spike,
	}
}
