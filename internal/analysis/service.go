package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
	"github.com/symfluence/snowcover/backend/internal/snow"
	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/logger"
	"github.com/symfluence/snowcover/backend/pkg/redis"
)

// Platform is the subset of the geospatial client the service needs.
type Platform interface {
	WatershedNames(ctx context.Context) ([]string, error)
	WatershedGeometry(name string) earthengine.Expression
	PointBuffer(lat, lon, bufferM float64) earthengine.Expression
	CollectionSize(ctx context.Context, geometry earthengine.Expression, from, to time.Time) (int, error)
	SnowSeries(ctx context.Context, geometry earthengine.Expression, from, to time.Time, opts earthengine.SnowMetricsOptions) (*earthengine.FeatureCollection, error)
	MonthlyComposites(ctx context.Context, geometry earthengine.Expression, from, to time.Time, maxFrames int) ([]earthengine.CompositeFrame, error)
}

// ProgressFunc receives analysis progress updates: a percentage and a
// stage message, mirroring the interactive progress bar.
type ProgressFunc func(percent int, stage string)

// noProgress is used when the caller does not care about stages.
func noProgress(int, string) {}

// Service orchestrates snow cover analyses: validate, query the
// platform, reshape, compute statistics, cache and persist.
type Service struct {
	platform Platform
	repo     *Repository
	cache    *redis.Cache
	cacheTTL time.Duration
	source   string
	logger   *logger.Logger
}

// NewService creates a new analysis service. repo may be nil for
// one-shot CLI runs without a database.
func NewService(platform Platform, repo *Repository, cache *redis.Cache, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		platform: platform,
		repo:     repo,
		cache:    cache,
		cacheTTL: cfg.Analysis.CacheTTL,
		source:   cfg.EarthEngine.SnowCollection,
		logger:   log.WithField("module", "analysis"),
	}
}

// WatershedRequest describes a basin-scale analysis.
type WatershedRequest struct {
	Watershed     string    `json:"watershed"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	IncludeFrames bool      `json:"include_frames"`
	MaxFrames     int       `json:"max_frames"`
}

// PointRequest describes a point-and-buffer analysis.
type PointRequest struct {
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	BufferM float64   `json:"buffer_m"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// Watersheds returns the cached watershed dropdown source.
func (s *Service) Watersheds(ctx context.Context) ([]string, error) {
	var names []string
	err := s.cache.GetOrSet(ctx, redis.WatershedListKey(), &names, redis.TTLAnalysis, func() (interface{}, error) {
		return s.platform.WatershedNames(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("load watersheds: %w", err)
	}
	return names, nil
}

// RefreshWatersheds drops and repopulates the watershed list cache.
func (s *Service) RefreshWatersheds(ctx context.Context) (int, error) {
	names, err := s.platform.WatershedNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh watersheds: %w", err)
	}
	if err := s.cache.Set(ctx, redis.WatershedListKey(), names, redis.TTLAnalysis); err != nil {
		s.logger.WithError(err).Warn("Failed to cache watershed list")
	}
	return len(names), nil
}

// AnalyzeWatershed runs a basin-scale analysis. progress may be nil.
func (s *Service) AnalyzeWatershed(ctx context.Context, req WatershedRequest, progress ProgressFunc) (*Report, error) {
	if progress == nil {
		progress = noProgress
	}
	if err := validateWatershedRequest(req); err != nil {
		return nil, err
	}

	cacheKey := redis.WatershedAnalysisKey(req.Watershed, req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
	if !req.IncludeFrames {
		var cached Report
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			s.logger.WithField("watershed", req.Watershed).Debug("Analysis cache hit")
			progress(100, "Analysis complete")
			return &cached, nil
		}
	}

	progress(10, "Loading watershed data")
	geometry := s.platform.WatershedGeometry(req.Watershed)

	progress(30, "Filtering snow imagery")
	size, err := s.platform.CollectionSize(ctx, geometry, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if size == 0 {
		return nil, ErrNoData
	}

	progress(50, fmt.Sprintf("Processing %d images", size))
	fc, err := s.platform.SnowSeries(ctx, geometry, req.From, req.To,
		earthengine.SnowMetricsOptions{MaxPixels: earthengine.MaxPixelsWatershed})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	progress(80, "Reshaping results")
	series := snow.FromFeatureCollection(fc, false)
	if series.Empty() {
		return nil, ErrNoData
	}

	report := &Report{
		Mode:            ModeWatershed,
		Watershed:       req.Watershed,
		From:            req.From,
		To:              req.To,
		ImagesProcessed: size,
		Series:          series,
		Stats:           snow.Analyze(series),
		DataSource:      s.source,
		CreatedAt:       time.Now().UTC(),
	}

	if req.IncludeFrames {
		maxFrames := req.MaxFrames
		if maxFrames <= 0 {
			maxFrames = 12
		}
		frames, err := s.platform.MonthlyComposites(ctx, geometry, req.From, req.To, maxFrames)
		if err != nil {
			// Frames are an extra; the analysis itself stands
			s.logger.WithError(err).Warn("Failed to compute animation frames")
		} else {
			report.Frames = frames
		}
	}

	s.finish(ctx, report, cacheKey)
	progress(100, "Analysis complete")
	return report, nil
}

// AnalyzePoint runs a point-and-buffer analysis. progress may be nil.
func (s *Service) AnalyzePoint(ctx context.Context, req PointRequest, progress ProgressFunc) (*Report, error) {
	if progress == nil {
		progress = noProgress
	}
	if err := validatePointRequest(req); err != nil {
		return nil, err
	}

	cacheKey := redis.PointAnalysisKey(req.Lat, req.Lon, req.BufferM,
		req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
	var cached Report
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		s.logger.WithFields(map[string]interface{}{
			"lat": req.Lat, "lon": req.Lon,
		}).Debug("Analysis cache hit")
		progress(100, "Analysis complete")
		return &cached, nil
	}

	progress(10, "Building buffer geometry")
	geometry := s.platform.PointBuffer(req.Lat, req.Lon, req.BufferM)

	progress(30, "Filtering snow imagery")
	size, err := s.platform.CollectionSize(ctx, geometry, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if size == 0 {
		return nil, ErrNoData
	}

	progress(50, fmt.Sprintf("Processing %d images", size))
	fc, err := s.platform.SnowSeries(ctx, geometry, req.From, req.To,
		earthengine.SnowMetricsOptions{MaxPixels: earthengine.MaxPixelsPoint, IncludeSWE: true})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	progress(80, "Reshaping results")
	series := snow.FromFeatureCollection(fc, true)
	if series.Empty() {
		return nil, ErrNoData
	}

	report := &Report{
		Mode:            ModePoint,
		Lat:             req.Lat,
		Lon:             req.Lon,
		BufferM:         req.BufferM,
		From:            req.From,
		To:              req.To,
		ImagesProcessed: size,
		Series:          series,
		Stats:           snow.Analyze(series),
		DataSource:      s.source,
		CreatedAt:       time.Now().UTC(),
	}

	s.finish(ctx, report, cacheKey)
	progress(100, "Analysis complete")
	return report, nil
}

// finish persists and caches a completed report. Both steps are best
// effort: the in-memory report is already the user's answer.
func (s *Service) finish(ctx context.Context, report *Report, cacheKey string) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, report); err != nil {
			s.logger.WithError(err).Warn("Failed to persist report")
		}
	}
	if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache report")
	}
}

func validateWatershedRequest(req WatershedRequest) error {
	if req.Watershed == "" {
		return fmt.Errorf("%w: watershed is required", ErrInvalidInput)
	}
	return validateDateRange(req.From, req.To)
}

func validatePointRequest(req PointRequest) error {
	if req.Lat < -90 || req.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidInput)
	}
	if req.Lon < -180 || req.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidInput)
	}
	if req.BufferM < 500 || req.BufferM > 5000 {
		return fmt.Errorf("%w: buffer must be between 500 and 5000 meters", ErrInvalidInput)
	}
	return validateDateRange(req.From, req.To)
}

func validateDateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
	}
	return nil
}
