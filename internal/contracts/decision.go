package contracts

import "fmt"

// Action is a recommendation direction for either the physical or the hedge
// leg. Only a serialization concern maps these to strings; internal code
// switches on the typed constants exhaustively.
type Action string

const (
	ActionStrongIncrease Action = "strong_increase"
	ActionIncrease       Action = "increase"
	ActionHold           Action = "hold"
	ActionDecrease       Action = "decrease"
	ActionStrongDecrease Action = "strong_decrease"
)

// IsIncrease reports whether the action is any increase variant.
func (a Action) IsIncrease() bool {
	return a == ActionIncrease || a == ActionStrongIncrease
}

// IsDecrease reports whether the action is any decrease variant.
func (a Action) IsDecrease() bool {
	return a == ActionDecrease || a == ActionStrongDecrease
}

// Valid reports whether the action is one of the five known variants.
func (a Action) Valid() bool {
	switch a {
	case ActionStrongIncrease, ActionIncrease, ActionHold, ActionDecrease, ActionStrongDecrease:
		return true
	}
	return false
}

// Intensity qualifies how forcefully a recommendation is held.
type Intensity string

const (
	IntensityNeutral  Intensity = "neutral"
	IntensityModerate Intensity = "moderate"
	IntensityStrong   Intensity = "strong"
)

// Valid reports whether the intensity is one of the three known variants.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityNeutral, IntensityModerate, IntensityStrong:
		return true
	}
	return false
}

// ScoreBand is the 5-band classification of the aggregate physical score.
type ScoreBand string

const (
	BandVeryWeak   ScoreBand = "very_weak"
	BandWeak       ScoreBand = "weak"
	BandNeutral    ScoreBand = "neutral"
	BandStrong     ScoreBand = "strong"
	BandVeryStrong ScoreBand = "very_strong"
)

// PhysicalRecommendation is the cash-position leg of a decision. SizingPct is
// a suggested percentage adjustment to the physical position; its sign always
// matches the action direction, and hold implies zero.
type PhysicalRecommendation struct {
	Action    Action    `json:"action"`
	Intensity Intensity `json:"intensity"`
	SizingPct float64   `json:"sizing_pct"`
}

// HedgeRecommendation is the futures-hedge leg of a decision. DeltaPP is a
// suggested adjustment, in percentage points, versus the hedge target.
type HedgeRecommendation struct {
	Action    Action    `json:"action"`
	Intensity Intensity `json:"intensity"`
	DeltaPP   float64   `json:"delta_pp"`
}

// HoldPhysical is the neutral physical recommendation used when a guard or
// override flattens the signal.
func HoldPhysical() PhysicalRecommendation {
	return PhysicalRecommendation{Action: ActionHold, Intensity: IntensityNeutral, SizingPct: 0}
}

// HoldHedge is the neutral hedge recommendation.
func HoldHedge() HedgeRecommendation {
	return HedgeRecommendation{Action: ActionHold, Intensity: IntensityNeutral, DeltaPP: 0}
}

// Validate checks the sign invariant between action and magnitude.
func (p PhysicalRecommendation) Validate() error {
	return validateDirection(p.Action, p.SizingPct)
}

// Validate checks the sign invariant between action and magnitude.
func (h HedgeRecommendation) Validate() error {
	return validateDirection(h.Action, h.DeltaPP)
}

func validateDirection(action Action, magnitude float64) error {
	switch action {
	case ActionStrongIncrease, ActionIncrease:
		if magnitude < 0 {
			return fmt.Errorf("%s with negative magnitude %.1f", action, magnitude)
		}
	case ActionStrongDecrease, ActionDecrease:
		if magnitude > 0 {
			return fmt.Errorf("%s with positive magnitude %.1f", action, magnitude)
		}
	case ActionHold:
		if magnitude != 0 {
			return fmt.Errorf("hold with non-zero magnitude %.1f", magnitude)
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// ComponentScores holds the five sub-scores, each in [0,100].
type ComponentScores struct {
	Lineup          float64 `json:"lineup"`
	Premium         float64 `json:"premium"`
	Competitiveness float64 `json:"competitiveness"`
	Demand          float64 `json:"demand"`
	FX              float64 `json:"fx"`
}

// ScoringResult is the output of the scoring engine: the weighted aggregate,
// its band, and the baseline recommendations before overrides and book
// modulation.
type ScoringResult struct {
	Score          float64
	Classification ScoreBand
	Components     ComponentScores
	Physical       PhysicalRecommendation
	Hedge          HedgeRecommendation
}
