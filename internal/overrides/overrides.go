// Package overrides evaluates the hard rules that can replace the
// score-derived recommendations. Every rule is checked independently; only
// the highest-priority triggered rule substitutes its actions.
package overrides

import (
	"fmt"
	"sort"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/signals"
)

// Rule priorities. Lower dominates.
const (
	PriorityLogistics               = 1
	PriorityJointDrop               = 2
	PriorityPremiumTrap             = 3
	PriorityCriticalCompetitiveness = 4
	PrioritySpeculativeSpike        = 5
)

// Premium percentile cut points shared with the signal layer.
const (
	premiumWeakCut   = 40.0
	premiumStrongCut = 80.0
)

// CheckLogistics triggers on an active logistics flag: a port that cannot
// ship makes any accumulation toxic regardless of price.
func CheckLogistics(active bool, reason string) *contracts.Override {
	if !active {
		return nil
	}
	if reason == "" {
		reason = "logistics restriction active"
	}
	return &contracts.Override{
		Kind:     contracts.OverrideLogistics,
		Priority: PriorityLogistics,
		Reason:   reason,
		Physical: &contracts.PhysicalRecommendation{
			Action:    contracts.ActionStrongDecrease,
			Intensity: contracts.IntensityStrong,
			SizingPct: -30.0,
		},
	}
}

// CheckJointDrop triggers when the line-up is falling hard while the premium
// percentile is already weak.
func CheckJointDrop(lineupWeeklyChange *float64, premiumPercentile float64) *contracts.Override {
	if lineupWeeklyChange == nil {
		return nil
	}
	falling := *lineupWeeklyChange < signals.LineupDropThreshold
	weak := premiumPercentile < premiumWeakCut
	if !falling || !weak {
		return nil
	}
	return &contracts.Override{
		Kind:     contracts.OverrideJointDrop,
		Priority: PriorityJointDrop,
		Reason: fmt.Sprintf("line-up falling (%.1f%%) with weak premium (percentile %.0f)",
			*lineupWeeklyChange, premiumPercentile),
		Physical: &contracts.PhysicalRecommendation{
			Action:    contracts.ActionDecrease,
			Intensity: contracts.IntensityStrong,
			SizingPct: -20.0,
		},
	}
}

// CheckPremiumTrap triggers when the premium percentile is strong but the
// line-up is falling hard: the rich premium is a closing window, not an
// invitation to accumulate.
func CheckPremiumTrap(lineupWeeklyChange *float64, premiumPercentile float64) *contracts.Override {
	if lineupWeeklyChange == nil {
		return nil
	}
	falling := *lineupWeeklyChange < signals.LineupDropThreshold
	strong := premiumPercentile > premiumStrongCut
	if !falling || !strong {
		return nil
	}
	return &contracts.Override{
		Kind:     contracts.OverridePremiumTrap,
		Priority: PriorityPremiumTrap,
		Reason: fmt.Sprintf("strong premium (percentile %.0f) but line-up falling (%.1f%%)",
			premiumPercentile, *lineupWeeklyChange),
		Physical: &contracts.PhysicalRecommendation{
			Action:    contracts.ActionStrongDecrease,
			Intensity: contracts.IntensityStrong,
			SizingPct: -25.0,
		},
	}
}

// CheckCriticalCompetitiveness triggers when the adjusted FOB spread puts the
// local origin out of the market.
func CheckCriticalCompetitiveness(spreadAdjusted float64) *contracts.Override {
	if spreadAdjusted <= signals.CriticalSpreadThreshold {
		return nil
	}
	return &contracts.Override{
		Kind:     contracts.OverrideCriticalCompetitiveness,
		Priority: PriorityCriticalCompetitiveness,
		Reason:   fmt.Sprintf("origin not competitive (spread +%.1f USD/ton)", spreadAdjusted),
		Physical: &contracts.PhysicalRecommendation{
			Action:    contracts.ActionDecrease,
			Intensity: contracts.IntensityModerate,
			SizingPct: -15.0,
		},
	}
}

// CheckSpeculativeSpike triggers on a fast reference-price spike with no
// confirmed fundamental narrative. It freezes the physical leg and sells the
// spike forward on the hedge leg.
func CheckSpeculativeSpike(spike, narrativeConfirmed bool) *contracts.Override {
	if !spike || narrativeConfirmed {
		return nil
	}
	return &contracts.Override{
		Kind:     contracts.OverrideSpeculativeSpike,
		Priority: PrioritySpeculativeSpike,
		Reason:   "speculative reference-price spike (>5% in 5d) without confirmed narrative",
		Physical: &contracts.PhysicalRecommendation{
			Action:    contracts.ActionHold,
			Intensity: contracts.IntensityModerate,
			SizingPct: 0,
		},
		Hedge: &contracts.HedgeRecommendation{
			Action:    contracts.ActionStrongIncrease,
			Intensity: contracts.IntensityStrong,
			DeltaPP:   20.0,
		},
	}
}

// Evaluate checks every rule against the observation, picks the dominant one
// by priority and substitutes its actions over the baseline recommendations.
func Evaluate(
	obs contracts.MarketObservation,
	physical contracts.PhysicalRecommendation,
	hedge contracts.HedgeRecommendation,
) contracts.OverrideEvaluation {
	var active []contracts.Override

	if o := CheckLogistics(obs.LogisticsActive, obs.LogisticsReason); o != nil {
		active = append(active, *o)
	}
	if o := CheckJointDrop(obs.LineupWeeklyChangePct, obs.PremiumPercentile); o != nil {
		active = append(active, *o)
	}
	if o := CheckPremiumTrap(obs.LineupWeeklyChangePct, obs.PremiumPercentile); o != nil {
		active = append(active, *o)
	}
	if o := CheckCriticalCompetitiveness(obs.SpreadAdjusted); o != nil {
		active = append(active, *o)
	}
	if o := CheckSpeculativeSpike(obs.ReferenceSpike, obs.NarrativeConfirmed); o != nil {
		active = append(active, *o)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	eval := contracts.OverrideEvaluation{
		Active:           active,
		OriginalPhysical: physical,
		OriginalHedge:    hedge,
		FinalPhysical:    physical,
		FinalHedge:       hedge,
	}

	if len(active) == 0 {
		return eval
	}

	dominant := active[0]
	eval.Dominant = &dominant
	if dominant.AffectsPhysical() {
		eval.FinalPhysical = *dominant.Physical
	}
	if dominant.AffectsHedge() {
		eval.FinalHedge = *dominant.Hedge
	}
	return eval
}

// Justification renders the override outcome as a single human-readable line.
func Justification(eval contracts.OverrideEvaluation) string {
	if !eval.HasOverride() {
		return "no override active; recommendation follows the score"
	}

	dominant := *eval.Dominant
	line := fmt.Sprintf("OVERRIDE ACTIVE: %s | reason: %s", dominant.Kind, dominant.Reason)

	if len(eval.Active) > 1 {
		others := ""
		for i, o := range eval.Active[1:] {
			if i > 0 {
				others += ", "
			}
			others += string(o.Kind)
		}
		line += fmt.Sprintf(" | lower-priority overrides also active: %s", others)
	}

	if dominant.AffectsPhysical() {
		line += fmt.Sprintf(" | physical action: %s (was: %s)",
			eval.FinalPhysical.Action, eval.OriginalPhysical.Action)
	}
	if dominant.AffectsHedge() {
		line += fmt.Sprintf(" | hedge action: %s (was: %s)",
			eval.FinalHedge.Action, eval.OriginalHedge.Action)
	}
	return line
}
