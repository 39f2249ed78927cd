// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/basismind/basismind/internal/brain"
	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/pkg/logger"
	"github.com/basismind/basismind/pkg/redis"
)

const (
	dateLayout        = "2006-01-02"
	latestCacheKey    = "decision:latest"
	latestCacheExpiry = 5 * time.Minute
)

// DecisionHandler serves decision reports and triggers pipeline runs.
type DecisionHandler struct {
	orchestrator *brain.Orchestrator
	reports      contracts.ReportRepository
	cache        *redis.Cache
	logger       *logger.Logger
}

// NewDecisionHandler creates a new decision handler.
func NewDecisionHandler(
	orchestrator *brain.Orchestrator,
	reports contracts.ReportRepository,
	log *logger.Logger,
) *DecisionHandler {
	return &DecisionHandler{orchestrator: orchestrator, reports: reports, logger: log}
}

// WithCache enables caching of the latest report.
func (h *DecisionHandler) WithCache(cache *redis.Cache) *DecisionHandler {
	h.cache = cache
	return h
}

// GetLatest returns the most recent decision report.
// GET /api/decision/latest
func (h *DecisionHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached contracts.DecisionReport
		if hit, err := h.cache.Get(r.Context(), latestCacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	report, err := h.reports.GetLatest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest report")
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "no reports yet")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), latestCacheKey, report, latestCacheExpiry); err != nil {
			h.logger.WithError(err).Warn("Failed to cache latest report")
		}
	}
	respondJSON(w, http.StatusOK, report)
}

// GetByDate returns the report for one reference date.
// GET /api/decision/{date}
func (h *DecisionHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	report, err := h.reports.GetByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load report")
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "no report for "+date.Format(dateLayout))
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// List returns reports within a date range.
// GET /api/decisions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	reports, err := h.reports.List(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// RunRequest is the body of POST /api/decision/run.
type RunRequest struct {
	Date               string   `json:"date"`
	WaitTimeDays       *float64 `json:"wait_time_days,omitempty"`
	WaitTimeWeeksAbove int      `json:"wait_time_weeks_above,omitempty"`
	LoadingRate        *float64 `json:"loading_rate,omitempty"`
	ManualEvent        string   `json:"manual_event,omitempty"`
	NarrativeConfirmed bool     `json:"narrative_confirmed,omitempty"`
}

// Run executes the decision pipeline for a date.
// POST /api/decision/run
func (h *DecisionHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.orchestrator.Decide(r.Context(), date, brain.OperatorInputs{
		WaitTimeDays:       req.WaitTimeDays,
		WaitTimeWeeksAbove: req.WaitTimeWeeksAbove,
		LoadingRate:        req.LoadingRate,
		ManualEvent:        req.ManualEvent,
		NarrativeConfirmed: req.NarrativeConfirmed,
	})
	if err != nil {
		h.logger.WithError(err).Error("Decision run failed")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// A fresh run supersedes whatever is cached.
	if h.cache != nil {
		if err := h.cache.Delete(r.Context(), latestCacheKey); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate report cache")
		}
	}
	respondJSON(w, http.StatusOK, report)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
