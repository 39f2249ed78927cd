package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestValidateRange(t *testing.T) {
	spec := ColumnSpec{Name: "usd_brl", Min: 3.0, Max: 10.0}

	assert.Nil(t, ValidateRange(nil, spec), "nil values pass")
	assert.Nil(t, ValidateRange(fp(5.2), spec))
	assert.Nil(t, ValidateRange(fp(3.0), spec), "boundary value passes")

	issue := ValidateRange(fp(2.5), spec)
	require.NotNil(t, issue)
	assert.Equal(t, IssueOutOfRange, issue.IssueType)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Contains(t, issue.Message, "< min=3")

	issue = ValidateRange(fp(12), spec)
	require.NotNil(t, issue)
	assert.Contains(t, issue.Message, "> max=10")
}

func TestDetectAnomaly(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	assert.Nil(t, DetectAnomaly("chicago_front", 500, flat), "zero std never flags")

	history := make([]float64, 40)
	for i := range history {
		history[i] = 100 + float64(i%5) // mean 102, std ~1.4
	}
	assert.Nil(t, DetectAnomaly("chicago_front", 104, history))

	issue := DetectAnomaly("chicago_front", 200, history)
	require.NotNil(t, issue)
	assert.Equal(t, IssueAnomaly, issue.IssueType)
	assert.Equal(t, SeverityWarning, issue.Severity)

	short := history[:20]
	assert.Nil(t, DetectAnomaly("chicago_front", 200, short), "short history never flags")
}

func TestValidateLineupConsistency(t *testing.T) {
	assert.Nil(t, ValidateLineupConsistency(nil, ip(10)))
	assert.Nil(t, ValidateLineupConsistency(ip(80), ip(70)))
	assert.Nil(t, ValidateLineupConsistency(ip(80), ip(80)))

	issue := ValidateLineupConsistency(ip(70), ip(80))
	require.NotNil(t, issue)
	assert.Equal(t, IssueValidationError, issue.IssueType)
	assert.Equal(t, SeverityError, issue.Severity)
}

func TestValidateCancellationRate(t *testing.T) {
	assert.Nil(t, ValidateCancellationRate(nil, ip(80)))
	assert.Nil(t, ValidateCancellationRate(ip(5), ip(80)))
	assert.Nil(t, ValidateCancellationRate(ip(0), ip(0)))

	issue := ValidateCancellationRate(ip(3), ip(0))
	require.NotNil(t, issue)
	assert.Contains(t, issue.Message, "lineup_gross=0")

	issue = ValidateCancellationRate(ip(90), ip(80))
	require.NotNil(t, issue)
	assert.Contains(t, issue.Message, "> 100%")
}

func TestValidateRowCollectsIssues(t *testing.T) {
	row := &contracts.MarketDataRow{
		PremiumParanagua: fp(600), // above max 500
		USDBRL:           fp(5.2),
		LineupGross:      ip(70),
		LineupNet:        ip(80), // inconsistent
	}

	issues := ValidateRow(row, nil)

	require.Len(t, issues, 2)
	assert.Equal(t, "premium_paranagua", issues[0].Column)
	assert.Equal(t, "lineup", issues[1].Column)
	assert.False(t, HasBlockingIssue(issues))
}

func TestMissingRate(t *testing.T) {
	empty := &contracts.MarketDataRow{}
	assert.Equal(t, 1.0, MissingRate(empty))

	full := &contracts.MarketDataRow{
		PremiumParanagua:  fp(85),
		ChicagoFront:      fp(1200),
		USDBRL:            fp(5.2),
		FOBParanagua:      fp(480),
		FOBUSGulf:         fp(450),
		LineupGross:       ip(80),
		LineupNet:         ip(75),
		Cancellations7D:   ip(3),
		ExportsWeeklyTons: fp(2.5e6),
	}
	assert.Equal(t, 0.0, MissingRate(full))

	partial := &contracts.MarketDataRow{USDBRL: fp(5.2)}
	assert.InDelta(t, 8.0/9.0, MissingRate(partial), 1e-9)
}
