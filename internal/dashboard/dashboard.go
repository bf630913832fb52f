// Package dashboard serves the server-rendered web UI: the analysis
// forms, the report view with its charts, and the report history.
package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/snow"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

var funcMap = template.FuncMap{
	"fmtDate": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02")
	},
	"fmtPct": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"fmtRatio": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"fmtCoord": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 4, 64)
	},
}

// Handler serves the dashboard pages.
type Handler struct {
	service *analysis.Service
	repo    *analysis.Repository
	logger  *logger.Logger
}

// NewHandler creates the dashboard handler. repo may be nil; the
// history pages then show an empty list.
func NewHandler(service *analysis.Service, repo *analysis.Repository, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		logger:  log.WithField("module", "dashboard"),
	}
}

// Register mounts the dashboard routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/analyze/watershed", h.AnalyzeWatershed).Methods(http.MethodPost)
	r.HandleFunc("/analyze/point", h.AnalyzePoint).Methods(http.MethodPost)
	r.HandleFunc("/reports", h.Reports).Methods(http.MethodGet)
	r.HandleFunc("/reports/{id:[0-9]+}", h.ReportDetail).Methods(http.MethodGet)
}

func (h *Handler) render(w http.ResponseWriter, tmplStr string, data any) {
	t, err := template.New("page").Funcs(funcMap).Parse(tmplBase + tmplStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.WithError(err).Error("Template render failed")
	}
}

// indexData feeds the analysis form page.
type indexData struct {
	Watersheds        []string
	SelectedWatershed string
	From, To          string
	Lat, Lon, BufferM string
	Error             string
}

func (h *Handler) indexData(r *http.Request) indexData {
	watersheds, err := h.service.Watersheds(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load watershed list")
	}
	now := time.Now().UTC()
	return indexData{
		Watersheds: watersheds,
		From:       now.AddDate(-1, 0, 0).Format("2006-01-02"),
		To:         now.Format("2006-01-02"),
		Lat:        "51.1784",
		Lon:        "-115.5708",
		BufferM:    "1000",
	}
}

// Index renders the analysis forms.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, tmplIndex, h.indexData(r))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	data := h.indexData(r)
	switch {
	case errors.Is(err, analysis.ErrNoData):
		data.Error = err.Error()
	case errors.Is(err, analysis.ErrInvalidInput):
		data.Error = err.Error()
	default:
		data.Error = fmt.Sprintf("Analysis failed: %v", err)
	}
	h.render(w, tmplIndex, data)
}

// AnalyzeWatershed runs a watershed analysis from the form post.
func (h *Handler) AnalyzeWatershed(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	report, err := h.service.AnalyzeWatershed(r.Context(), analysis.WatershedRequest{
		Watershed: r.FormValue("watershed"),
		From:      from,
		To:        to,
	}, nil)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderReport(w, report)
}

// AnalyzePoint runs a point analysis from the form post.
func (h *Handler) AnalyzePoint(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	lat, _ := strconv.ParseFloat(r.FormValue("lat"), 64)
	lon, _ := strconv.ParseFloat(r.FormValue("lon"), 64)
	bufferM, _ := strconv.ParseFloat(r.FormValue("buffer_m"), 64)

	report, err := h.service.AnalyzePoint(r.Context(), analysis.PointRequest{
		Lat: lat, Lon: lon, BufferM: bufferM,
		From: from, To: to,
	}, nil)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderReport(w, report)
}

// Reports renders the analysis history.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	var summaries []analysis.ReportSummary
	if h.repo != nil {
		var err error
		summaries, err = h.repo.List(r.Context(), 50)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list reports")
		}
	}
	h.render(w, tmplReports, struct{ Reports []analysis.ReportSummary }{summaries})
}

// ReportDetail re-renders a persisted report.
func (h *Handler) ReportDetail(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.NotFound(w, r)
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	report, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrReportNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.renderReport(w, report)
}

// reportData feeds the report template.
type reportData struct {
	Title                string
	Report               *analysis.Report
	SeriesChart          template.HTML
	SWEChart             template.HTML
	Histogram            []barRow
	SeasonalBars         []barRow
	AnnualRows           []barRow
	PersistenceThreshold float64
}

func (h *Handler) renderReport(w http.ResponseWriter, report *analysis.Report) {
	title := "Watershed: " + report.Watershed
	if report.Mode == analysis.ModePoint {
		title = fmt.Sprintf("Point: %.4f, %.4f", report.Lat, report.Lon)
	}

	data := reportData{
		Title:                title,
		Report:               report,
		SeriesChart:          seriesChartSVG(report.Series, report.Stats.Basic.Mean),
		Histogram:            histogramBars(report.Series),
		SeasonalBars:         seasonalBars(report.Stats.Seasonal),
		AnnualRows:           annualRows(report.Stats.Annual),
		PersistenceThreshold: snow.PersistenceThreshold,
	}
	if report.Series.HasSWE {
		data.SWEChart = sweChartSVG(report.Series)
	}

	h.render(w, tmplReport, data)
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", r.FormValue("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date", analysis.ErrInvalidInput)
	}
	to, err := time.Parse("2006-01-02", r.FormValue("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date", analysis.ErrInvalidInput)
	}
	return from, to, nil
}
