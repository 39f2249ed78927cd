package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
)

func fp(v float64) *float64 { return &v }

func TestScoreLineup(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  float64
	}{
		{"missing defaults to midpoint", nil, 50},
		{"domain minimum", fp(-15), 0},
		{"domain maximum", fp(15), 100},
		{"zero change is neutral", fp(0), 50},
		{"below domain clamps", fp(-40), 0},
		{"above domain clamps", fp(40), 100},
		{"interior point", fp(7.5), 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreLineup(tt.input), 1e-9)
		})
	}
}

func TestScorePremium(t *testing.T) {
	assert.Equal(t, 0.0, ScorePremium(-5))
	assert.Equal(t, 100.0, ScorePremium(120))
	assert.Equal(t, 65.0, ScorePremium(65))
}

func TestScoreCompetitiveness(t *testing.T) {
	// Decreasing map: cheap origin (negative spread) scores high.
	assert.InDelta(t, 100.0, ScoreCompetitiveness(-20), 1e-9)
	assert.InDelta(t, 0.0, ScoreCompetitiveness(20), 1e-9)
	assert.InDelta(t, 50.0, ScoreCompetitiveness(0), 1e-9)
	assert.InDelta(t, 25.0, ScoreCompetitiveness(10), 1e-9)
	assert.InDelta(t, 0.0, ScoreCompetitiveness(35), 1e-9)
}

func TestScoreDemand(t *testing.T) {
	assert.InDelta(t, 50.0, ScoreDemand(nil), 1e-9)
	assert.InDelta(t, 0.0, ScoreDemand(fp(-1.5)), 1e-9)
	assert.InDelta(t, 100.0, ScoreDemand(fp(1.5)), 1e-9)
	assert.InDelta(t, 100.0, ScoreDemand(fp(3.0)), 1e-9)
}

func TestScoreFX(t *testing.T) {
	// Decreasing map: a weakening local currency (negative change) scores high.
	assert.InDelta(t, 50.0, ScoreFX(nil), 1e-9)
	assert.InDelta(t, 100.0, ScoreFX(fp(-3)), 1e-9)
	assert.InDelta(t, 0.0, ScoreFX(fp(3)), 1e-9)
	assert.InDelta(t, 50.0, ScoreFX(fp(0)), 1e-9)
}

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightLineup + WeightPremium + WeightCompetitiveness + WeightDemand + WeightFX
	require.InDelta(t, 1.0, sum, 1e-12)
}

func TestAggregateScoreBounds(t *testing.T) {
	all0 := contracts.ComponentScores{}
	all100 := contracts.ComponentScores{Lineup: 100, Premium: 100, Competitiveness: 100, Demand: 100, FX: 100}

	assert.Equal(t, 0.0, AggregateScore(all0))
	assert.InDelta(t, 100.0, AggregateScore(all100), 1e-9)
}

func TestAggregateScoreWeighted(t *testing.T) {
	c := contracts.ComponentScores{Lineup: 100, Premium: 0, Competitiveness: 0, Demand: 0, FX: 0}
	assert.InDelta(t, 30.0, AggregateScore(c), 1e-9)

	c = contracts.ComponentScores{Lineup: 80, Premium: 70, Competitiveness: 60, Demand: 50, FX: 40}
	want := 0.30*80 + 0.25*70 + 0.20*60 + 0.15*50 + 0.10*40
	assert.InDelta(t, want, AggregateScore(c), 1e-9)
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  contracts.ScoreBand
	}{
		{80, contracts.BandVeryStrong},
		{79.9, contracts.BandStrong},
		{65, contracts.BandStrong},
		{64.9, contracts.BandNeutral},
		{35.1, contracts.BandNeutral},
		{35, contracts.BandWeak},
		{20.1, contracts.BandWeak},
		{20, contracts.BandVeryWeak},
		{0, contracts.BandVeryWeak},
		{100, contracts.BandVeryStrong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestPhysicalBaseline(t *testing.T) {
	tests := []struct {
		score      float64
		action     contracts.Action
		intensity  contracts.Intensity
		sizing     float64
	}{
		{85, contracts.ActionStrongIncrease, contracts.IntensityStrong, 25},
		{80, contracts.ActionStrongIncrease, contracts.IntensityStrong, 25},
		{70, contracts.ActionIncrease, contracts.IntensityModerate, 15},
		{65, contracts.ActionIncrease, contracts.IntensityNeutral, 15},
		{50, contracts.ActionHold, contracts.IntensityNeutral, 0},
		{35, contracts.ActionDecrease, contracts.IntensityNeutral, -15},
		{30, contracts.ActionDecrease, contracts.IntensityModerate, -15},
		{20, contracts.ActionStrongDecrease, contracts.IntensityStrong, -25},
		{10, contracts.ActionStrongDecrease, contracts.IntensityStrong, -25},
	}

	for _, tt := range tests {
		rec := PhysicalBaseline(tt.score)
		assert.Equal(t, tt.action, rec.Action, "score %v", tt.score)
		assert.Equal(t, tt.intensity, rec.Intensity, "score %v", tt.score)
		assert.Equal(t, tt.sizing, rec.SizingPct, "score %v", tt.score)
		require.NoError(t, rec.Validate())
	}
}

func TestHedgeBaseline(t *testing.T) {
	tests := []struct {
		name       string
		percentile float64
		spike      bool
		action     contracts.Action
		delta      float64
	}{
		{"very high locks in", 85, false, contracts.ActionStrongIncrease, 20},
		{"high sells forward", 70, false, contracts.ActionIncrease, 10},
		{"mid holds", 50, false, contracts.ActionHold, 0},
		{"low reduces", 30, false, contracts.ActionDecrease, -10},
		{"very low reduces hard", 15, false, contracts.ActionStrongDecrease, -20},
		{"spike above midpoint caps response", 78, true, contracts.ActionIncrease, 10},
		{"spike at very high still capped", 90, true, contracts.ActionIncrease, 10},
		{"spike below midpoint follows band", 30, true, contracts.ActionDecrease, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := HedgeBaseline(tt.percentile, tt.spike)
			assert.Equal(t, tt.action, rec.Action)
			assert.Equal(t, tt.delta, rec.DeltaPP)
			require.NoError(t, rec.Validate())
		})
	}
}

func TestComputeFullStage(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 3, 10),
		LineupWeeklyChangePct: fp(7.5),
		PremiumPercentile:     70,
		SpreadAdjusted:        -10,
		DemandZPace:           fp(0.75),
		FXChange5DPct:         fp(-1.5),
		ReferencePercentile:   70,
	}

	result := Compute(obs)

	assert.InDelta(t, 75.0, result.Components.Lineup, 1e-9)
	assert.InDelta(t, 70.0, result.Components.Premium, 1e-9)
	assert.InDelta(t, 75.0, result.Components.Competitiveness, 1e-9)
	assert.InDelta(t, 75.0, result.Components.Demand, 1e-9)
	assert.InDelta(t, 75.0, result.Components.FX, 1e-9)

	want := 0.30*75 + 0.25*70 + 0.20*75 + 0.15*75 + 0.10*75
	assert.InDelta(t, want, result.Score, 1e-9)
	assert.Equal(t, contracts.BandStrong, result.Classification)
	assert.Equal(t, contracts.ActionIncrease, result.Physical.Action)
	assert.Equal(t, contracts.ActionIncrease, result.Hedge.Action)
}

func TestComputeNeutralDefaults(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:       contracts.NewDate(2026, 3, 10),
		PremiumPercentile:   50,
		ReferencePercentile: 50,
	}

	result := Compute(obs)

	assert.InDelta(t, 50.0, result.Score, 1e-9)
	assert.Equal(t, contracts.BandNeutral, result.Classification)
	assert.Equal(t, contracts.ActionHold, result.Physical.Action)
	assert.Equal(t, contracts.ActionHold, result.Hedge.Action)
	assert.False(t, math.IsNaN(result.Score))
}
