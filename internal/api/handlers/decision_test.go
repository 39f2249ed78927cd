package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/pkg/logger"
)

type memoryReports struct {
	reports map[string]*contracts.DecisionReport
}

func newMemoryReports() *memoryReports {
	return &memoryReports{reports: make(map[string]*contracts.DecisionReport)}
}

func (m *memoryReports) Save(ctx context.Context, report *contracts.DecisionReport) error {
	m.reports[report.ReferenceDate.String()] = report
	return nil
}

func (m *memoryReports) GetLatest(ctx context.Context) (*contracts.DecisionReport, error) {
	var latest *contracts.DecisionReport
	for _, r := range m.reports {
		if latest == nil || r.ReferenceDate.After(latest.ReferenceDate.Time) {
			latest = r
		}
	}
	return latest, nil
}

func (m *memoryReports) GetByDate(ctx context.Context, date time.Time) (*contracts.DecisionReport, error) {
	return m.reports[date.Format("2006-01-02")], nil
}

func (m *memoryReports) List(ctx context.Context, from, to time.Time) ([]*contracts.DecisionReport, error) {
	var out []*contracts.DecisionReport
	for _, r := range m.reports {
		if !r.ReferenceDate.Before(from) && !r.ReferenceDate.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func sampleReport(date contracts.Date) *contracts.DecisionReport {
	return &contracts.DecisionReport{
		ReferenceDate:  date,
		Score:          71.8,
		Classification: contracts.BandStrong,
		Physical: contracts.PhysicalRecommendation{
			Action: contracts.ActionIncrease, Intensity: contracts.IntensityModerate, SizingPct: 15,
		},
		Hedge:           contracts.HoldHedge(),
		ActiveOverrides: []contracts.OverrideKind{},
		Justification:   "physical strong (score 72)",
	}
}

func TestGetLatest(t *testing.T) {
	reports := newMemoryReports()
	h := NewDecisionHandler(nil, reports, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest("GET", "/api/decision/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	older := sampleReport(contracts.NewDate(2026, time.April, 14))
	newer := sampleReport(contracts.NewDate(2026, time.April, 15))
	require.NoError(t, reports.Save(context.Background(), older))
	require.NoError(t, reports.Save(context.Background(), newer))

	rec = httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest("GET", "/api/decision/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got contracts.DecisionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2026-04-15", got.ReferenceDate.String())
	assert.Equal(t, 71.8, got.Score)
}

func TestGetByDate(t *testing.T) {
	reports := newMemoryReports()
	require.NoError(t, reports.Save(context.Background(),
		sampleReport(contracts.NewDate(2026, time.April, 15))))
	h := NewDecisionHandler(nil, reports, logger.NewNop())

	serve := func(date string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/decision/"+date, nil)
		req = mux.SetURLVars(req, map[string]string{"date": date})
		h.GetByDate(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("2026-04-15").Code)
	assert.Equal(t, http.StatusNotFound, serve("2026-04-16").Code)
	assert.Equal(t, http.StatusBadRequest, serve("not-a-date").Code)
}

func TestListRequiresRange(t *testing.T) {
	h := NewDecisionHandler(nil, newMemoryReports(), logger.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/decisions", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/decisions?from=2026-04-01&to=2026-04-30", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestIngestWithoutPipeline(t *testing.T) {
	h := NewDataHandler(nil, nil, nil, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Ingest(rec, httptest.NewRequest("POST", "/api/market/ingest", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRunsWithoutQualityLog(t *testing.T) {
	h := NewDataHandler(nil, nil, nil, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetRuns(rec, httptest.NewRequest("GET", "/api/quality/runs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
