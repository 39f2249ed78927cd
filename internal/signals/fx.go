package signals

import (
	"math"
	"time"
)

// FXSignal is the 5-band classification of the 5-day currency move.
type FXSignal string

const (
	FXStrongRise FXSignal = "strong_rise"
	FXRise       FXSignal = "rise"
	FXNeutral    FXSignal = "neutral"
	FXDrop       FXSignal = "drop"
	FXStrongDrop FXSignal = "strong_drop"
	FXUnknown    FXSignal = "unknown"
)

// FXMetrics is the normalized currency signal.
type FXMetrics struct {
	Date    time.Time
	USDBRL  float64
	Var5D   *float64
	Var20D  *float64
	Signal  FXSignal

	// Modulation is an informational sizing factor derived from the signal;
	// the scoring pipeline consumes the 5-day change directly.
	Modulation float64
}

// ChangePct computes the percentage change from previous to current, rounded
// to 2 decimals. Returns nil when previous is absent or zero.
func ChangePct(current float64, previous *float64) *float64 {
	if previous == nil || *previous == 0 {
		return nil
	}
	change := (current - *previous) / *previous * 100
	change = math.Round(change*100) / 100
	return &change
}

// ClassifyFX maps the 5-day change to its 5-band signal using cut points
// at ±1 and ±3 percent.
func ClassifyFX(var5d *float64) FXSignal {
	if var5d == nil {
		return FXUnknown
	}
	switch v := *var5d; {
	case v < -3:
		return FXStrongDrop
	case v < -1:
		return FXDrop
	case v < 1:
		return FXNeutral
	case v < 3:
		return FXRise
	default:
		return FXStrongRise
	}
}

// fxModulation returns the informational sizing factor for a signal.
func fxModulation(signal FXSignal) float64 {
	switch signal {
	case FXStrongRise:
		return 1.2
	case FXRise:
		return 1.1
	case FXDrop:
		return 0.9
	case FXStrongDrop:
		return 0.8
	default:
		return 1.0
	}
}

// ComputeFXMetrics assembles the currency signal from the current quote and
// optional 5- and 20-day-ago quotes.
func ComputeFXMetrics(date time.Time, usdbrl float64, usdbrl5dAgo, usdbrl20dAgo *float64) FXMetrics {
	var5d := ChangePct(usdbrl, usdbrl5dAgo)
	var20d := ChangePct(usdbrl, usdbrl20dAgo)
	signal := ClassifyFX(var5d)

	return FXMetrics{
		Date:       date,
		USDBRL:     usdbrl,
		Var5D:      var5d,
		Var20D:     var20d,
		Signal:     signal,
		Modulation: fxModulation(signal),
	}
}
