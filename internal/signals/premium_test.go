package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegimeOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Regime
	}{
		{time.February, RegimeOffSeason},
		{time.March, RegimeHarvest},
		{time.July, RegimeHarvest},
		{time.August, RegimeOffSeason},
		{time.December, RegimeOffSeason},
	}
	for _, tt := range tests {
		date := time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, RegimeOf(date), "month %s", tt.month)
	}
}

func TestRegimeMonthsPartition(t *testing.T) {
	harvest := RegimeMonths(RegimeHarvest)
	off := RegimeMonths(RegimeOffSeason)

	assert.Len(t, harvest, 5)
	assert.Len(t, off, 7)

	seen := map[time.Month]bool{}
	for _, m := range append(harvest, off...) {
		assert.False(t, seen[m], "month %s appears twice", m)
		seen[m] = true
	}
	assert.Len(t, seen, 12)
}

func TestPercentileEmptySample(t *testing.T) {
	_, err := Percentile(50, nil)
	require.Error(t, err)
}

func TestPercentileTieSplitting(t *testing.T) {
	// 2 below, 2 equal, 1 above: (2 + 0.5*2) / 5 * 100 = 60
	historical := []float64{10, 20, 30, 30, 40}
	p, err := Percentile(30, historical)
	require.NoError(t, err)
	assert.Equal(t, 60.0, p)
}

func TestPercentileExtremes(t *testing.T) {
	historical := []float64{10, 20, 30, 40}

	p, err := Percentile(5, historical)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	p, err = Percentile(100, historical)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)
}

func TestClassifyPremiumBands(t *testing.T) {
	tests := []struct {
		percentile float64
		want       PremiumClass
	}{
		{0, PremiumVeryLow},
		{19.99, PremiumVeryLow},
		{20, PremiumLow},
		{39.99, PremiumLow},
		{40, PremiumNeutral},
		{59.99, PremiumNeutral},
		{60, PremiumHigh},
		{79.99, PremiumHigh},
		{80, PremiumVeryHigh},
		{100, PremiumVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPremium(tt.percentile), "percentile %.2f", tt.percentile)
	}
}

func TestNormalizePremiumLowConfidence(t *testing.T) {
	date := time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)

	small := []float64{50, 60, 70}
	result, err := NormalizePremium(date, 65, small)
	require.NoError(t, err)
	assert.True(t, result.LowConfidence)
	assert.Equal(t, RegimeHarvest, result.Regime)
	assert.Equal(t, 3, result.HistoricalCount)

	large := make([]float64, MinPremiumSamples)
	for i := range large {
		large[i] = float64(40 + i)
	}
	result, err = NormalizePremium(date, 65, large)
	require.NoError(t, err)
	assert.False(t, result.LowConfidence)
}

func TestNormalizePremiumEmptyHistory(t *testing.T) {
	date := time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)
	_, err := NormalizePremium(date, 65, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-04-15")
}
