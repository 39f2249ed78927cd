package contracts

// OverrideKind identifies a hard rule that can replace the score-derived
// recommendation.
type OverrideKind string

const (
	OverrideLogistics               OverrideKind = "logistics"
	OverrideJointDrop               OverrideKind = "joint_drop"
	OverridePremiumTrap             OverrideKind = "premium_trap"
	OverrideCriticalCompetitiveness OverrideKind = "critical_competitiveness"
	OverrideSpeculativeSpike        OverrideKind = "speculative_spike"
)

// Override is a triggered hard rule. Priority 1 is the most dominant, 5 the
// least. A nil Physical or Hedge leaves the corresponding baseline untouched.
type Override struct {
	Kind     OverrideKind
	Priority int
	Reason   string
	Physical *PhysicalRecommendation
	Hedge    *HedgeRecommendation
}

// AffectsPhysical reports whether the override replaces the physical leg.
func (o Override) AffectsPhysical() bool {
	return o.Physical != nil
}

// AffectsHedge reports whether the override replaces the hedge leg.
func (o Override) AffectsHedge() bool {
	return o.Hedge != nil
}

// OverrideEvaluation is the result of evaluating all rules: every triggered
// override in priority order, the single dominant one, and the final
// recommendations after substitution.
type OverrideEvaluation struct {
	Active   []Override
	Dominant *Override

	OriginalPhysical PhysicalRecommendation
	OriginalHedge    HedgeRecommendation
	FinalPhysical    PhysicalRecommendation
	FinalHedge       HedgeRecommendation
}

// HasOverride reports whether any rule dominated the baseline.
func (e OverrideEvaluation) HasOverride() bool {
	return e.Dominant != nil
}

// ActiveKinds returns the triggered override identifiers in priority order.
func (e OverrideEvaluation) ActiveKinds() []OverrideKind {
	kinds := make([]OverrideKind, 0, len(e.Active))
	for _, o := range e.Active {
		kinds = append(kinds, o.Kind)
	}
	return kinds
}
