// Package scoring maps normalized market signals to a weighted physical
// score and the baseline recommendations derived from it. Every function is
// pure; missing optional inputs default to the neutral midpoint here, at the
// point of consumption.
package scoring

import "github.com/basismind/basismind/internal/contracts"

// Fixed component weights. They sum to exactly 1.0.
const (
	WeightLineup          = 0.30
	WeightPremium         = 0.25
	WeightCompetitiveness = 0.20
	WeightDemand          = 0.15
	WeightFX              = 0.10
)

// Aggregate score band cut points.
const (
	BandVeryStrongCut = 80.0
	BandStrongCut     = 65.0
	BandWeakCut       = 35.0
	BandVeryWeakCut   = 20.0
)

// Component input domains. Each map is linear over its domain and clamps
// outside it.
const (
	lineupDomainMin = -15.0
	lineupDomainMax = 15.0
	spreadDomainMin = -20.0
	spreadDomainMax = 20.0
	demandDomainMax = 1.5
	fxDomainMax     = 3.0
)

// neutralScore is the midpoint substituted for missing optional inputs.
const neutralScore = 50.0

// Hedge band cut points over the reference-price percentile.
const (
	hedgeVeryHighCut = 80.0
	hedgeHighCut     = 65.0
	hedgeLowCut      = 35.0
	hedgeVeryLowCut  = 20.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// linearMap maps value from [inMin,inMax] onto [0,100], clamped. An inverted
// input domain (inMin > inMax) yields a decreasing map.
func linearMap(value, inMin, inMax float64) float64 {
	if inMax == inMin {
		return neutralScore
	}
	ratio := (value - inMin) / (inMax - inMin)
	return clamp(ratio*100, 0, 100)
}

// ScoreLineup maps the weekly line-up change over [-15,+15], increasing.
func ScoreLineup(weeklyChangePct *float64) float64 {
	if weeklyChangePct == nil {
		return neutralScore
	}
	return linearMap(*weeklyChangePct, lineupDomainMin, lineupDomainMax)
}

// ScorePremium is the identity map over the percentile, clamped to [0,100].
func ScorePremium(percentile float64) float64 {
	return clamp(percentile, 0, 100)
}

// ScoreCompetitiveness maps the adjusted spread over [+20,-20], decreasing:
// a cheaper domestic origin scores higher.
func ScoreCompetitiveness(spreadAdjusted float64) float64 {
	return linearMap(spreadAdjusted, spreadDomainMax, spreadDomainMin)
}

// ScoreDemand maps the pace z-score over [-1.5,+1.5], increasing.
func ScoreDemand(zPace *float64) float64 {
	if zPace == nil {
		return neutralScore
	}
	return linearMap(*zPace, -demandDomainMax, demandDomainMax)
}

// ScoreFX maps the 5-day currency change over [+3,-3], decreasing: a
// weakening local currency scores higher.
func ScoreFX(var5dPct *float64) float64 {
	if var5dPct == nil {
		return neutralScore
	}
	return linearMap(*var5dPct, fxDomainMax, -fxDomainMax)
}

// ComputeComponentScores produces the five sub-scores from the observation's
// normalized inputs.
func ComputeComponentScores(obs contracts.MarketObservation) contracts.ComponentScores {
	return contracts.ComponentScores{
		Lineup:          ScoreLineup(obs.LineupWeeklyChangePct),
		Premium:         ScorePremium(obs.PremiumPercentile),
		Competitiveness: ScoreCompetitiveness(obs.SpreadAdjusted),
		Demand:          ScoreDemand(obs.DemandZPace),
		FX:              ScoreFX(obs.FXChange5DPct),
	}
}

// AggregateScore is the fixed-weight sum of the component scores, clamped.
func AggregateScore(c contracts.ComponentScores) float64 {
	score := WeightLineup*c.Lineup +
		WeightPremium*c.Premium +
		WeightCompetitiveness*c.Competitiveness +
		WeightDemand*c.Demand +
		WeightFX*c.FX
	return clamp(score, 0, 100)
}

// Classify maps the aggregate score to its 5-band classification.
func Classify(score float64) contracts.ScoreBand {
	switch {
	case score >= BandVeryStrongCut:
		return contracts.BandVeryStrong
	case score >= BandStrongCut:
		return contracts.BandStrong
	case score <= BandVeryWeakCut:
		return contracts.BandVeryWeak
	case score <= BandWeakCut:
		return contracts.BandWeak
	default:
		return contracts.BandNeutral
	}
}

// intensityOf derives the intensity tag from score extremity.
func intensityOf(score float64) contracts.Intensity {
	if score > 80 || score < 20 {
		return contracts.IntensityStrong
	}
	if score > 65 || score < 35 {
		return contracts.IntensityModerate
	}
	return contracts.IntensityNeutral
}

// PhysicalBaseline derives the baseline physical recommendation purely from
// the aggregate score.
func PhysicalBaseline(score float64) contracts.PhysicalRecommendation {
	intensity := intensityOf(score)

	switch {
	case score >= BandVeryStrongCut:
		return contracts.PhysicalRecommendation{
			Action:    contracts.ActionStrongIncrease,
			Intensity: contracts.IntensityStrong,
			SizingPct: 25.0,
		}
	case score >= BandStrongCut:
		return contracts.PhysicalRecommendation{
			Action:    contracts.ActionIncrease,
			Intensity: intensity,
			SizingPct: 15.0,
		}
	case score <= BandVeryWeakCut:
		return contracts.PhysicalRecommendation{
			Action:    contracts.ActionStrongDecrease,
			Intensity: contracts.IntensityStrong,
			SizingPct: -25.0,
		}
	case score <= BandWeakCut:
		return contracts.PhysicalRecommendation{
			Action:    contracts.ActionDecrease,
			Intensity: intensity,
			SizingPct: -15.0,
		}
	default:
		return contracts.HoldPhysical()
	}
}

// HedgeBaseline derives the baseline hedge recommendation from the
// reference-price percentile. A flagged speculative spike at or above the
// midpoint forces a moderate +10pp increase regardless of band.
func HedgeBaseline(referencePercentile float64, speculativeSpike bool) contracts.HedgeRecommendation {
	if speculativeSpike && referencePercentile >= 50 {
		return contracts.HedgeRecommendation{
			Action:    contracts.ActionIncrease,
			Intensity: contracts.IntensityModerate,
			DeltaPP:   10.0,
		}
	}

	switch {
	case referencePercentile >= hedgeVeryHighCut:
		return contracts.HedgeRecommendation{
			Action:    contracts.ActionStrongIncrease,
			Intensity: contracts.IntensityStrong,
			DeltaPP:   20.0,
		}
	case referencePercentile >= hedgeHighCut:
		return contracts.HedgeRecommendation{
			Action:    contracts.ActionIncrease,
			Intensity: contracts.IntensityModerate,
			DeltaPP:   10.0,
		}
	case referencePercentile <= hedgeVeryLowCut:
		return contracts.HedgeRecommendation{
			Action:    contracts.ActionStrongDecrease,
			Intensity: contracts.IntensityStrong,
			DeltaPP:   -20.0,
		}
	case referencePercentile <= hedgeLowCut:
		return contracts.HedgeRecommendation{
			Action:    contracts.ActionDecrease,
			Intensity: contracts.IntensityModerate,
			DeltaPP:   -10.0,
		}
	default:
		return contracts.HoldHedge()
	}
}

// Compute runs the full scoring stage for one observation.
func Compute(obs contracts.MarketObservation) contracts.ScoringResult {
	components := ComputeComponentScores(obs)
	score := AggregateScore(components)

	return contracts.ScoringResult{
		Score:          score,
		Classification: Classify(score),
		Components:     components,
		Physical:       PhysicalBaseline(score),
		Hedge:          HedgeBaseline(obs.ReferencePercentile, obs.ReferenceSpike),
	}
}
