package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/pkg/logger"
)

type memoryMarketRepo struct {
	rows map[string]contracts.MarketDataRow
	err  error
}

func newMemoryMarketRepo() *memoryMarketRepo {
	return &memoryMarketRepo{rows: make(map[string]contracts.MarketDataRow)}
}

func (r *memoryMarketRepo) Upsert(_ context.Context, row *contracts.MarketDataRow) error {
	if r.err != nil {
		return r.err
	}
	r.rows[row.Date.Format("2006-01-02")] = *row
	return nil
}

func (r *memoryMarketRepo) GetByDate(_ context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	row, ok := r.rows[date.Format("2006-01-02")]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *memoryMarketRepo) GetValueDaysAgo(context.Context, string, time.Time, int) (*float64, error) {
	return nil, nil
}

type failingSource struct{}

func (failingSource) Fetch(context.Context, time.Time) (*contracts.MarketDataRow, error) {
	return nil, ErrNotFound
}

func (failingSource) Name() string { return "failing" }

func sampleRow() contracts.MarketDataRow {
	return contracts.MarketDataRow{
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
}

func TestPipelineRequiresSource(t *testing.T) {
	_, err := NewPipeline(nil, newMemoryMarketRepo(), logger.NewNop())
	require.Error(t, err)
}

func TestPipelineRunSuccess(t *testing.T) {
	repo := newMemoryMarketRepo()
	pipe, err := NewPipeline(
		[]DataSource{NewManualSource(sampleRow())}, repo, logger.NewNop())
	require.NoError(t, err)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	result := pipe.Run(context.Background(), date)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0.0, result.Missing)

	stored, err := repo.GetByDate(context.Background(), date)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 85.0, *stored.PremiumParanagua)
}

func TestPipelineRunPartialOnWarnings(t *testing.T) {
	row := sampleRow()
	row.USDBRL = fp(12.5) // above the plausible range
	repo := newMemoryMarketRepo()
	pipe, err := NewPipeline(
		[]DataSource{NewManualSource(row)}, repo, logger.NewNop())
	require.NoError(t, err)

	result := pipe.Run(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, StatusPartial, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "usd_brl")
	// Warnings do not block persistence.
	assert.Len(t, repo.rows, 1)
}

func TestPipelineRunAllSourcesFail(t *testing.T) {
	repo := newMemoryMarketRepo()
	pipe, err := NewPipeline([]DataSource{failingSource{}}, repo, logger.NewNop())
	require.NoError(t, err)

	result := pipe.Run(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1.0, result.Missing)
	assert.Empty(t, repo.rows)
}

func TestPipelineFallsThroughToSecondSource(t *testing.T) {
	repo := newMemoryMarketRepo()
	pipe, err := NewPipeline(
		[]DataSource{failingSource{}, NewManualSource(sampleRow())},
		repo, logger.NewNop())
	require.NoError(t, err)

	result := pipe.Run(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Len(t, repo.rows, 1)
}

func TestPipelineEnrichFillsMissingColumns(t *testing.T) {
	primary := sampleRow()
	primary.LineupGross = nil
	primary.LineupNet = nil
	primary.Cancellations7D = nil

	enricher := contracts.MarketDataRow{
		LineupGross:     ip(90),
		LineupNet:       ip(84),
		Cancellations7D: ip(4),
		USDBRL:          fp(9.9), // must not overwrite the primary value
	}

	repo := newMemoryMarketRepo()
	pipe, err := NewPipeline(
		[]DataSource{NewManualSource(primary)}, repo, logger.NewNop())
	require.NoError(t, err)
	pipe.WithEnrichers(NewManualSource(enricher))

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	result := pipe.Run(context.Background(), date)

	assert.Equal(t, StatusSuccess, result.Status)
	stored, _ := repo.GetByDate(context.Background(), date)
	require.NotNil(t, stored)
	assert.Equal(t, 90, *stored.LineupGross)
	assert.Equal(t, 84, *stored.LineupNet)
	assert.Equal(t, 5.2, *stored.USDBRL)
}

func TestPipelinePersistFailure(t *testing.T) {
	repo := newMemoryMarketRepo()
	repo.err = errors.New("connection refused")
	pipe, err := NewPipeline(
		[]DataSource{NewManualSource(sampleRow())}, repo, logger.NewNop())
	require.NoError(t, err)

	result := pipe.Run(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Failed)
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.csv")
	content := "date,premium_paranagua,chicago_front,usd_brl,fob_paranagua,fob_us_gulf,lineup_gross,lineup_net,cancellations_7d,exports_weekly_tons\n" +
		"2026-03-10,85.5,1200,5.20,480,450,80,75,3,2500000\n" +
		"2026-03-11,,1210,5.25,,,82,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	source, err := NewCSVSource(path)
	require.NoError(t, err)
	assert.Equal(t, "csv:"+path, source.Name())

	row, err := source.Fetch(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 85.5, *row.PremiumParanagua)
	assert.Equal(t, 80, *row.LineupGross)
	assert.Equal(t, 2.5e6, *row.ExportsWeeklyTons)

	row, err = source.Fetch(context.Background(), time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, row.PremiumParanagua)
	assert.Nil(t, row.LineupNet)
	assert.Equal(t, 1210.0, *row.ChicagoFront)

	_, err = source.Fetch(context.Background(), time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
