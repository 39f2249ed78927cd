package contracts

// HedgeTolerancePP is the slack, in percentage points, allowed above the hedge
// target before increase recommendations are suppressed.
const HedgeTolerancePP = 20.0

// BookState is the trader's current position against configured limits.
// Limits are caller-supplied constraints; the pipeline does not validate
// their arithmetic relationship.
type BookState struct {
	ExposurePct   float64 `json:"exposure_pct"`    // signed % of capacity
	LongLimitPct  float64 `json:"long_limit_pct"`  // expected >= 0
	ShortLimitPct float64 `json:"short_limit_pct"` // expected <= 0
	HedgePct      float64 `json:"hedge_pct"`       // current hedge ratio
	HedgeMetaPct  float64 `json:"hedge_meta_pct"`  // target hedge ratio
}

// LongHeadroom returns the remaining room to increase exposure, floored at 0.
func (b BookState) LongHeadroom() float64 {
	if h := b.LongLimitPct - b.ExposurePct; h > 0 {
		return h
	}
	return 0
}

// ShortHeadroom returns the remaining room to decrease exposure, floored at 0.
func (b BookState) ShortHeadroom() float64 {
	if h := b.ExposurePct - b.ShortLimitPct; h > 0 {
		return h
	}
	return 0
}

// AtLongLimit reports whether exposure has reached the long limit.
func (b BookState) AtLongLimit() bool {
	return b.ExposurePct >= b.LongLimitPct
}

// AtShortLimit reports whether exposure has reached the short limit.
func (b BookState) AtShortLimit() bool {
	return b.ExposurePct <= b.ShortLimitPct
}

// Overhedged reports whether the hedge ratio exceeds target plus tolerance.
func (b BookState) Overhedged() bool {
	return b.HedgePct >= b.HedgeMetaPct+HedgeTolerancePP
}
