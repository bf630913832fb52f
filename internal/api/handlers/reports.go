package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/export"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// ReportHandler serves persisted analysis reports and their exports.
type ReportHandler struct {
	repo   *analysis.Repository
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(repo *analysis.Repository, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns recent reports, newest first
// GET /api/reports?limit=N
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": summaries,
		"count":   len(summaries),
	})
}

// Get returns one full report
// GET /api/reports/:id
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Export downloads a report in csv, json or txt form
// GET /api/reports/:id/export?format=csv
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(report, format)))

	if err := export.Write(w, report, format); err != nil {
		h.logger.WithError(err).Error("Failed to write export")
	}
}

func (h *ReportHandler) loadReport(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid report id")
		return nil, false
	}

	report, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "report not found")
			return nil, false
		}
		h.logger.WithError(err).Error("Failed to load report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return nil, false
	}
	return report, true
}
