package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// AnalysisHandler handles analysis API endpoints.
type AnalysisHandler struct {
	service *analysis.Service
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log,
	}
}

// GetWatersheds returns the available watershed names
// GET /api/watersheds
func (h *AnalysisHandler) GetWatersheds(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Watersheds(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load watersheds")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve watershed list")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"watersheds": names,
		"count":      len(names),
	})
}

// watershedRequest is the wire form of a watershed analysis request.
type watershedRequest struct {
	Watershed     string `json:"watershed"`
	From          string `json:"from"`
	To            string `json:"to"`
	IncludeFrames bool   `json:"include_frames"`
	MaxFrames     int    `json:"max_frames"`
}

// AnalyzeWatershed runs a watershed analysis
// POST /api/analysis/watershed
func (h *AnalysisHandler) AnalyzeWatershed(w http.ResponseWriter, r *http.Request) {
	var req watershedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := parseDate(req.From, "from")
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	to, err := parseDate(req.To, "to")
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	report, err := h.service.AnalyzeWatershed(r.Context(), analysis.WatershedRequest{
		Watershed:     req.Watershed,
		From:          from,
		To:            to,
		IncludeFrames: req.IncludeFrames,
		MaxFrames:     req.MaxFrames,
	}, nil)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// pointRequest is the wire form of a point analysis request.
type pointRequest struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	BufferM float64 `json:"buffer_m"`
	From    string  `json:"from"`
	To      string  `json:"to"`
}

// AnalyzePoint runs a point-and-buffer analysis
// POST /api/analysis/point
func (h *AnalysisHandler) AnalyzePoint(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := parseDate(req.From, "from")
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	to, err := parseDate(req.To, "to")
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	report, err := h.service.AnalyzePoint(r.Context(), analysis.PointRequest{
		Lat:     req.Lat,
		Lon:     req.Lon,
		BufferM: req.BufferM,
		From:    from,
		To:      to,
	}, nil)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}
