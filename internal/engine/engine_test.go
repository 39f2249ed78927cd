package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func neutralObs() contracts.MarketObservation {
	return contracts.MarketObservation{
		ReferenceDate:       contracts.NewDate(2026, 3, 10),
		PremiumPercentile:   50,
		ReferencePercentile: 50,
	}
}

func TestRunDeterministic(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 3, 10),
		LineupWeeklyChangePct: fp(8),
		PremiumPercentile:     72,
		SpreadAdjusted:        -6,
		DemandZPace:           fp(0.4),
		FXChange5DPct:         fp(-0.8),
		ReferencePercentile:   70,
	}
	state := DefaultBook()

	first := Run(obs, state)
	second := Run(obs, state)

	assert.Equal(t, first, second)
}

func TestRunNeutral(t *testing.T) {
	report := Run(neutralObs(), DefaultBook())

	assert.Equal(t, 50.0, report.Score)
	assert.Equal(t, contracts.BandNeutral, report.Classification)
	assert.Equal(t, contracts.ActionHold, report.Physical.Action)
	assert.Equal(t, contracts.ActionHold, report.Hedge.Action)
	assert.Empty(t, report.ActiveOverrides)
	assert.Nil(t, report.DominantOverride)
	assert.False(t, report.ModulationApplied)
	assert.Nil(t, report.ModulationReason)
	assert.Contains(t, report.Justification, "physical neutral (score 50)")
	assert.Contains(t, report.Justification, "recommendation: hold (physical), hold (hedge)")
}

func TestRunJointDropScenario(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 4, 2),
		LineupWeeklyChangePct: fp(-15),
		PremiumPercentile:     25,
		SpreadAdjusted:        5,
		ReferencePercentile:   50,
	}

	report := Run(obs, DefaultBook())

	require.NotNil(t, report.DominantOverride)
	assert.Equal(t, contracts.OverrideJointDrop, *report.DominantOverride)
	assert.Equal(t, contracts.ActionDecrease, report.Physical.Action)
	assert.Equal(t, -20.0, report.Physical.SizingPct)
}

func TestRunPremiumTrapScenario(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 4, 2),
		LineupWeeklyChangePct: fp(-12),
		PremiumPercentile:     88,
		ReferencePercentile:   50,
	}

	report := Run(obs, DefaultBook())

	require.NotNil(t, report.DominantOverride)
	assert.Equal(t, contracts.OverridePremiumTrap, *report.DominantOverride)
	assert.Equal(t, contracts.ActionStrongDecrease, report.Physical.Action)
	assert.Equal(t, -25.0, report.Physical.SizingPct)
}

func TestRunLogisticsDominatesJointDrop(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 4, 2),
		LineupWeeklyChangePct: fp(-15),
		PremiumPercentile:     25,
		ReferencePercentile:   50,
		LogisticsActive:       true,
		LogisticsReason:       "strike",
	}

	report := Run(obs, DefaultBook())

	require.NotNil(t, report.DominantOverride)
	assert.Equal(t, contracts.OverrideLogistics, *report.DominantOverride)
	assert.Equal(t, []contracts.OverrideKind{
		contracts.OverrideLogistics,
		contracts.OverrideJointDrop,
	}, report.ActiveOverrides)
	assert.Equal(t, -30.0, report.Physical.SizingPct)
	assert.Contains(t, report.Justification, "strike")
}

func TestRunLongLimitModulation(t *testing.T) {
	// Strong-enough inputs for an increase baseline, with the book pinned at
	// its long limit.
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 5, 11),
		LineupWeeklyChangePct: fp(9),
		PremiumPercentile:     65,
		SpreadAdjusted:        -8,
		DemandZPace:           fp(0.6),
		FXChange5DPct:         fp(-1.2),
		ReferencePercentile:   65,
	}
	state := DefaultBook()
	state.ExposurePct = 80

	report := Run(obs, state)

	assert.GreaterOrEqual(t, report.Score, 65.0)
	assert.Equal(t, contracts.ActionHold, report.Physical.Action)
	assert.Equal(t, 0.0, report.Physical.SizingPct)
	assert.True(t, report.ModulationApplied)
	require.NotNil(t, report.ModulationReason)
	assert.Contains(t, *report.ModulationReason, "long limit")
}

func TestRunSpeculativeSpikeScenario(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:       contracts.NewDate(2026, 6, 1),
		PremiumPercentile:   55,
		ReferencePercentile: 78,
		ReferenceSpike:      true,
	}

	report := Run(obs, DefaultBook())

	require.NotNil(t, report.DominantOverride)
	assert.Equal(t, contracts.OverrideSpeculativeSpike, *report.DominantOverride)
	assert.Equal(t, contracts.ActionHold, report.Physical.Action)
	assert.Equal(t, contracts.IntensityModerate, report.Physical.Intensity)
	assert.Equal(t, contracts.ActionStrongIncrease, report.Hedge.Action)
	assert.Equal(t, 20.0, report.Hedge.DeltaPP)
}

func TestRunEffectiveSizingClampedToHeadroom(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 6, 1),
		LineupWeeklyChangePct: fp(-15),
		PremiumPercentile:     25,
		SpreadAdjusted:        5,
		ReferencePercentile:   50,
	}
	state := DefaultBook()
	state.ExposurePct = -42 // 8pp of short headroom

	report := Run(obs, state)

	// Override asks for -20 but the book can only give up 8 more points.
	assert.Equal(t, contracts.ActionDecrease, report.Physical.Action)
	assert.Equal(t, -8.0, report.Physical.SizingPct)
}

func TestReportJSONRoundTrip(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 3, 10),
		LineupWeeklyChangePct: fp(7.53),
		PremiumPercentile:     71.24,
		SpreadAdjusted:        -6.37,
		DemandZPace:           fp(0.42),
		FXChange5DPct:         fp(-0.81),
		ReferencePercentile:   70,
		LogisticsActive:       true,
		LogisticsReason:       "manual event: strike",
	}

	report := Run(obs, DefaultBook())

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded contracts.DecisionReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"reference_date", "score", "classification", "physical", "hedge",
		"components", "active_overrides", "dominant_override",
		"modulation_applied", "modulation_reason", "justification",
	} {
		assert.Contains(t, raw, key)
	}
}

func TestJustificationDrivers(t *testing.T) {
	obs := contracts.MarketObservation{
		ReferenceDate:         contracts.NewDate(2026, 3, 10),
		LineupWeeklyChangePct: fp(12), // lineup score 90, furthest from 50
		PremiumPercentile:     30,     // premium score 30, second furthest
		SpreadAdjusted:        -2,     // competitiveness score 55
		ReferencePercentile:   50,
	}

	report := Run(obs, DefaultBook())

	assert.Contains(t, report.Justification, "drivers: lineup strong, premium weak")
}

func TestEngineStatefulRun(t *testing.T) {
	eng := New(DefaultBook(), logger.NewNop())

	assert.Nil(t, eng.LastReport())
	assert.Equal(t, DefaultBook(), eng.Book())

	report := eng.Run(neutralObs())

	require.NotNil(t, eng.LastReport())
	assert.Equal(t, report, *eng.LastReport())

	pinned := DefaultBook()
	pinned.ExposurePct = 80
	eng.UpdateBook(pinned)
	assert.Equal(t, pinned, eng.Book())
}
