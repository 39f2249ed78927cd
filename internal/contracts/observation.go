package contracts

import (
	"encoding/json"
	"time"
)

// Date is a calendar date serialized as ISO "2006-01-02". Decision reports
// carry no time-of-day component.
type Date struct {
	time.Time
}

// NewDate builds a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// String renders the date as "2006-01-02".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON serializes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// UnmarshalJSON parses "2006-01-02".
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarketObservation is the normalized snapshot of the market fed into the
// decision pipeline. It is constructed once per evaluation and never mutated.
// Optional inputs are nil pointers; each consumer applies its own documented
// default at the point of use.
type MarketObservation struct {
	ReferenceDate Date

	// Weekly percentage change of the net vessel line-up. Nil when no
	// comparable prior-week value exists.
	LineupWeeklyChangePct *float64

	// Premium percentile in [0,100] against the regime-matched history.
	PremiumPercentile float64

	// Freight-adjusted competitiveness spread, USD/ton. Positive means the
	// domestic origin is more expensive than the competitor.
	SpreadAdjusted float64

	// Export demand pace z-score vs the 5-year same-week sample. Nil when the
	// sample was too small.
	DemandZPace *float64

	// FX 5-day percentage change. Nil when no 5-day-ago quote exists.
	FXChange5DPct *float64

	// Reference futures price percentile in [0,100] over the rolling window.
	ReferencePercentile float64

	// Speculative spike flag on the reference price, and whether a fundamental
	// narrative confirming the move has been recorded.
	ReferenceSpike     bool
	NarrativeConfirmed bool

	// Logistics restriction flag with its concatenated trigger reasons.
	LogisticsActive bool
	LogisticsReason string
}
