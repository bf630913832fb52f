package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/symfluence/snowcover/backend/internal/analysis"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondAnalysisError maps service errors to HTTP statuses: the
// distinct no-data condition is 404, validation is 400, everything
// else surfaces as a 500 with the failure text.
func respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrNoData):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %v", err))
	}
}

// parseDate parses the YYYY-MM-DD wire format used by all endpoints.
func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", analysis.ErrInvalidInput, field)
	}
	return t, nil
}
