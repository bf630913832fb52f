package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/symfluence/snowcover/backend/internal/api/handlers"
	"github.com/symfluence/snowcover/backend/internal/dashboard"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// All route registration happens in this function.
func NewRouter(
	analysisHandler *handlers.AnalysisHandler,
	reportHandler *handlers.ReportHandler,
	catalogHandler *handlers.CatalogHandler,
	wsHandler *handlers.WSHandler,
	ui *dashboard.Handler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/watersheds", analysisHandler.GetWatersheds).Methods("GET")
	api.HandleFunc("/analysis/watershed", analysisHandler.AnalyzeWatershed).Methods("POST")
	api.HandleFunc("/analysis/point", analysisHandler.AnalyzePoint).Methods("POST")

	api.HandleFunc("/reports", reportHandler.List).Methods("GET")
	api.HandleFunc("/reports/{id:[0-9]+}", reportHandler.Get).Methods("GET")
	api.HandleFunc("/reports/{id:[0-9]+}/export", reportHandler.Export).Methods("GET")

	api.HandleFunc("/datasets/{id}", catalogHandler.GetDataset).Methods("GET")

	// WebSocket: analysis with streamed progress
	r.HandleFunc("/ws/analysis", wsHandler.Analyze)

	// Server-rendered dashboard
	if ui != nil {
		ui.Register(r)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "snowcover-api",
	})
}

// loggingMiddleware logs HTTP requests
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

// recoveryMiddleware recovers from panics
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
