package contracts

import "math"

// Round1 rounds to one decimal place. Every numeric field of a DecisionReport
// is rounded with this before the report is assembled, so serializing and
// deserializing a report reproduces it exactly.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// LineupComponent pairs the line-up sub-score with its raw input.
type LineupComponent struct {
	Score        float64 `json:"score"`
	VarWeeklyPct float64 `json:"var_weekly_pct"`
}

// PremiumComponent pairs the premium sub-score with its raw input.
type PremiumComponent struct {
	Score      float64 `json:"score"`
	Percentile float64 `json:"percentile"`
}

// CompetitivenessComponent pairs the competitiveness sub-score with its raw input.
type CompetitivenessComponent struct {
	Score          float64 `json:"score"`
	SpreadAdjusted float64 `json:"spread_adjusted"`
}

// DemandComponent pairs the demand sub-score with its raw input.
type DemandComponent struct {
	Score float64 `json:"score"`
	ZPace float64 `json:"z_pace"`
}

// FXComponent pairs the FX sub-score with its raw input.
type FXComponent struct {
	Score    float64 `json:"score"`
	Var5DPct float64 `json:"var_5d_pct"`
}

// ReportComponents carries the five sub-scores plus their raw inputs.
type ReportComponents struct {
	Lineup          LineupComponent          `json:"lineup"`
	Premium         PremiumComponent         `json:"premium"`
	Competitiveness CompetitivenessComponent `json:"competitiveness"`
	Demand          DemandComponent          `json:"demand"`
	FX              FXComponent              `json:"fx"`
}

// DecisionReport is the immutable, serializable result of one pipeline run.
// It is created once per run and never mutated after construction.
type DecisionReport struct {
	ReferenceDate     Date                   `json:"reference_date"`
	Score             float64                `json:"score"`
	Classification    ScoreBand              `json:"classification"`
	Physical          PhysicalRecommendation `json:"physical"`
	Hedge             HedgeRecommendation    `json:"hedge"`
	Components        ReportComponents       `json:"components"`
	ActiveOverrides   []OverrideKind         `json:"active_overrides"`
	DominantOverride  *OverrideKind          `json:"dominant_override"`
	ModulationApplied bool                   `json:"modulation_applied"`
	ModulationReason  *string                `json:"modulation_reason"`
	Justification     string                 `json:"justification"`
}
