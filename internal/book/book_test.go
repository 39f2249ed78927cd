package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
)

func defaultBook() contracts.BookState {
	return contracts.BookState{
		ExposurePct:   0,
		LongLimitPct:  80,
		ShortLimitPct: -50,
		HedgePct:      0,
		HedgeMetaPct:  60,
	}
}

func increase() contracts.PhysicalRecommendation {
	return contracts.PhysicalRecommendation{
		Action:    contracts.ActionIncrease,
		Intensity: contracts.IntensityModerate,
		SizingPct: 15,
	}
}

func TestModulateNoGuards(t *testing.T) {
	phys := increase()
	hedge := contracts.HoldHedge()

	result := Modulate(phys, hedge, defaultBook())

	assert.False(t, result.Modulated())
	assert.Equal(t, phys, result.Physical)
	assert.Equal(t, hedge, result.Hedge)
	assert.Nil(t, result.Reason)
}

func TestModulateLongLimit(t *testing.T) {
	state := defaultBook()
	state.ExposurePct = 80

	result := Modulate(increase(), contracts.HoldHedge(), state)

	assert.True(t, result.PhysicalModulated)
	assert.False(t, result.HedgeModulated)
	assert.Equal(t, contracts.HoldPhysical(), result.Physical)
	require.NotNil(t, result.Reason)
	assert.Contains(t, *result.Reason, "long limit (80%)")
}

func TestModulateShortLimit(t *testing.T) {
	state := defaultBook()
	state.ExposurePct = -50
	phys := contracts.PhysicalRecommendation{
		Action:    contracts.ActionStrongDecrease,
		Intensity: contracts.IntensityStrong,
		SizingPct: -25,
	}

	result := Modulate(phys, contracts.HoldHedge(), state)

	assert.True(t, result.PhysicalModulated)
	assert.Equal(t, contracts.HoldPhysical(), result.Physical)
	require.NotNil(t, result.Reason)
	assert.Contains(t, *result.Reason, "short limit (-50%)")
}

func TestModulateOverhedged(t *testing.T) {
	state := defaultBook()
	state.HedgePct = 80 // target 60 + tolerance 20
	hedge := contracts.HedgeRecommendation{
		Action:    contracts.ActionStrongIncrease,
		Intensity: contracts.IntensityStrong,
		DeltaPP:   20,
	}

	result := Modulate(contracts.HoldPhysical(), hedge, state)

	assert.False(t, result.PhysicalModulated)
	assert.True(t, result.HedgeModulated)
	assert.Equal(t, contracts.HoldHedge(), result.Hedge)
	require.NotNil(t, result.Reason)
	assert.Contains(t, *result.Reason, "hedge above target plus tolerance")
}

func TestModulateHedgeDecreaseNeverGuarded(t *testing.T) {
	state := defaultBook()
	state.HedgePct = 95
	hedge := contracts.HedgeRecommendation{
		Action:    contracts.ActionDecrease,
		Intensity: contracts.IntensityModerate,
		DeltaPP:   -10,
	}

	result := Modulate(contracts.HoldPhysical(), hedge, state)

	assert.False(t, result.Modulated())
	assert.Equal(t, hedge, result.Hedge)
}

func TestModulateBothGuards(t *testing.T) {
	state := defaultBook()
	state.ExposurePct = 85
	state.HedgePct = 85
	hedge := contracts.HedgeRecommendation{
		Action:    contracts.ActionIncrease,
		Intensity: contracts.IntensityModerate,
		DeltaPP:   10,
	}

	result := Modulate(increase(), hedge, state)

	assert.True(t, result.PhysicalModulated)
	assert.True(t, result.HedgeModulated)
	require.NotNil(t, result.Reason)
	assert.Contains(t, *result.Reason, " | ")
}

func TestModulateIdempotent(t *testing.T) {
	state := defaultBook()
	state.ExposurePct = 80

	first := Modulate(increase(), contracts.HoldHedge(), state)
	second := Modulate(first.Physical, first.Hedge, state)

	assert.Equal(t, first.Physical, second.Physical)
	assert.Equal(t, first.Hedge, second.Hedge)
	assert.False(t, second.Modulated(), "hold is never modulated again")
}

func TestEffectiveSizing(t *testing.T) {
	state := defaultBook()
	state.ExposurePct = 70 // long headroom 10, short headroom 120

	assert.Equal(t, 10.0, EffectiveSizing(25, state))
	assert.Equal(t, 5.0, EffectiveSizing(5, state))
	assert.Equal(t, -25.0, EffectiveSizing(-25, state))
	assert.Equal(t, 0.0, EffectiveSizing(0, state))

	state.ExposurePct = -45 // short headroom 5
	assert.Equal(t, -5.0, EffectiveSizing(-25, state))

	state.ExposurePct = 90 // past the long limit
	assert.Equal(t, 0.0, EffectiveSizing(15, state))
}
