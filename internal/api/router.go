package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/basismind/basismind/internal/api/handlers"
	"github.com/basismind/basismind/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	decisionHandler *handlers.DecisionHandler,
	dataHandler *handlers.DataHandler,
	hub *Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Decision endpoints
	api.HandleFunc("/decision/latest", decisionHandler.GetLatest).Methods("GET")
	api.HandleFunc("/decision/{date}", decisionHandler.GetByDate).Methods("GET")
	api.HandleFunc("/decision/run", decisionHandler.Run).Methods("POST")
	api.HandleFunc("/decisions", decisionHandler.List).Methods("GET")

	// Market data endpoints
	api.HandleFunc("/market/{date}", dataHandler.GetByDate).Methods("GET")
	api.HandleFunc("/market/ingest", dataHandler.Ingest).Methods("POST")
	api.HandleFunc("/quality/runs", dataHandler.GetRuns).Methods("GET")

	// Live report feed
	r.HandleFunc("/ws/reports", hub.ServeWS)

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "basismind-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
