package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/internal/ingest"
	"github.com/basismind/basismind/internal/store"
	"github.com/basismind/basismind/pkg/logger"
)

// DataHandler serves raw market data and ingestion control.
type DataHandler struct {
	market   contracts.MarketDataRepository
	pipeline *ingest.Pipeline
	quality  *store.QualityRepository
	logger   *logger.Logger
}

// NewDataHandler creates a new market data handler. Quality may be nil when
// no audit trail is configured.
func NewDataHandler(
	market contracts.MarketDataRepository,
	pipeline *ingest.Pipeline,
	quality *store.QualityRepository,
	log *logger.Logger,
) *DataHandler {
	return &DataHandler{market: market, pipeline: pipeline, quality: quality, logger: log}
}

// GetByDate returns the raw market row for one date.
// GET /api/market/{date}
func (h *DataHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	row, err := h.market.GetByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load market data")
		respondError(w, http.StatusInternalServerError, "failed to load market data")
		return
	}
	if row == nil {
		respondError(w, http.StatusNotFound, "no market data for "+date.Format(dateLayout))
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// IngestRequest is the body of POST /api/market/ingest.
type IngestRequest struct {
	Date string `json:"date"`
}

// Ingest runs the ingestion pipeline for a date.
// POST /api/market/ingest
func (h *DataHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, "no ingestion sources configured")
		return
	}

	var req IngestRequest
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

	result := h.pipeline.Run(r.Context(), date)

	status := http.StatusOK
	if result.Status == ingest.StatusFailed {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

// GetRuns returns recent ingestion runs.
// GET /api/quality/runs?limit=20
func (h *DataHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.quality == nil {
		respondError(w, http.StatusNotFound, "quality log not configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.quality.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load pipeline runs")
		respondError(w, http.StatusInternalServerError, "failed to load pipeline runs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}
