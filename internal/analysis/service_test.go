package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/logger"
	"github.com/symfluence/snowcover/backend/pkg/redis"
)

// fakePlatform returns canned responses without touching the network.
type fakePlatform struct {
	names      []string
	namesErr   error
	size       int
	sizeErr    error
	collection *earthengine.FeatureCollection
	seriesErr  error
	frames     []earthengine.CompositeFrame

	seriesOpts earthengine.SnowMetricsOptions
}

func (f *fakePlatform) WatershedNames(ctx context.Context) ([]string, error) {
	return f.names, f.namesErr
}

func (f *fakePlatform) WatershedGeometry(name string) earthengine.Expression {
	return earthengine.FeatureCollectionAsset("test").FilterEq("layer", name).First().Geometry()
}

func (f *fakePlatform) PointBuffer(lat, lon, bufferM float64) earthengine.Expression {
	return earthengine.Point(lon, lat).Buffer(bufferM)
}

func (f *fakePlatform) CollectionSize(ctx context.Context, g earthengine.Expression, from, to time.Time) (int, error) {
	return f.size, f.sizeErr
}

func (f *fakePlatform) SnowSeries(ctx context.Context, g earthengine.Expression, from, to time.Time, opts earthengine.SnowMetricsOptions) (*earthengine.FeatureCollection, error) {
	f.seriesOpts = opts
	return f.collection, f.seriesErr
}

func (f *fakePlatform) MonthlyComposites(ctx context.Context, g earthengine.Expression, from, to time.Time, maxFrames int) ([]earthengine.CompositeFrame, error) {
	return f.frames, nil
}

func testService(platform Platform) *Service {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Redis:     config.RedisConfig{Enabled: false},
		EarthEngine: config.EarthEngineConfig{
			SnowCollection: "MODIS/061/MOD10A1",
		},
		Analysis: config.AnalysisConfig{CacheTTL: time.Hour},
	}
	log := logger.New(cfg)
	rdb, _ := redis.New(cfg) // disabled: cache is a no-op
	return NewService(platform, nil, redis.NewCache(rdb, "snowcover"), cfg, log)
}

func validCollection() *earthengine.FeatureCollection {
	return &earthengine.FeatureCollection{
		Features: []earthengine.Feature{
			{Properties: map[string]interface{}{
				"date": "2022-01-15", "snow_cover_percent": 82.5, "year": float64(2022), "month": float64(1),
			}},
			{Properties: map[string]interface{}{
				"date": "2022-01-16", "snow_cover_percent": 79.0, "year": float64(2022), "month": float64(1),
			}},
		},
	}
}

func dateRange() (time.Time, time.Time) {
	return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzeWatershed(t *testing.T) {
	platform := &fakePlatform{size: 2, collection: validCollection()}
	svc := testService(platform)

	from, to := dateRange()
	var stages []string
	report, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{
		Watershed: "Bow at Banff", From: from, To: to,
	}, func(pct int, stage string) {
		stages = append(stages, fmt.Sprintf("%d:%s", pct, stage))
	})
	if err != nil {
		t.Fatalf("AnalyzeWatershed() failed: %v", err)
	}

	if report.Mode != ModeWatershed {
		t.Errorf("Mode = %s, want watershed", report.Mode)
	}
	if report.ImagesProcessed != 2 {
		t.Errorf("ImagesProcessed = %d, want 2", report.ImagesProcessed)
	}
	if report.Series.Len() != 2 {
		t.Errorf("series rows = %d, want 2", report.Series.Len())
	}
	if report.Stats.Basic.Count != 2 {
		t.Errorf("stats count = %d, want 2", report.Stats.Basic.Count)
	}
	if report.DataSource != "MODIS/061/MOD10A1" {
		t.Errorf("DataSource = %s", report.DataSource)
	}

	// Watershed mode uses the basin pixel cap, without SWE
	if platform.seriesOpts.MaxPixels != earthengine.MaxPixelsWatershed {
		t.Errorf("MaxPixels = %v, want watershed cap", platform.seriesOpts.MaxPixels)
	}
	if platform.seriesOpts.IncludeSWE {
		t.Error("IncludeSWE = true in watershed mode")
	}

	if len(stages) == 0 || stages[len(stages)-1] != "100:Analysis complete" {
		t.Errorf("progress stages = %v", stages)
	}
}

func TestAnalyzePoint(t *testing.T) {
	platform := &fakePlatform{size: 5, collection: &earthengine.FeatureCollection{
		Features: []earthengine.Feature{
			{Properties: map[string]interface{}{
				"date": "2022-02-10", "snow_cover_percent": 60.0, "swe_estimate": 30.0, "doy": float64(41),
			}},
		},
	}}
	svc := testService(platform)

	from, to := dateRange()
	report, err := svc.AnalyzePoint(context.Background(), PointRequest{
		Lat: 51.1784, Lon: -115.5708, BufferM: 1000, From: from, To: to,
	}, nil)
	if err != nil {
		t.Fatalf("AnalyzePoint() failed: %v", err)
	}

	if report.Mode != ModePoint {
		t.Errorf("Mode = %s, want point", report.Mode)
	}
	if !report.Series.HasSWE {
		t.Error("HasSWE = false in point mode")
	}
	if platform.seriesOpts.MaxPixels != earthengine.MaxPixelsPoint {
		t.Errorf("MaxPixels = %v, want point cap", platform.seriesOpts.MaxPixels)
	}
	if !platform.seriesOpts.IncludeSWE {
		t.Error("IncludeSWE = false in point mode")
	}
}

func TestAnalyzeWatershedNoImages(t *testing.T) {
	svc := testService(&fakePlatform{size: 0})
	from, to := dateRange()

	_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{
		Watershed: "Bow at Banff", From: from, To: to,
	}, nil)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestAnalyzeWatershedAllNullRows(t *testing.T) {
	svc := testService(&fakePlatform{size: 3, collection: &earthengine.FeatureCollection{
		Features: []earthengine.Feature{
			{Properties: map[string]interface{}{"date": "2022-01-15", "snow_cover_percent": nil}},
		},
	}})
	from, to := dateRange()

	_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{
		Watershed: "Bow at Banff", From: from, To: to,
	}, nil)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData for empty post-filter table", err)
	}
}

func TestAnalyzeWatershedRemoteFailure(t *testing.T) {
	svc := testService(&fakePlatform{sizeErr: errors.New("Not signed up for Earth Engine")})
	from, to := dateRange()

	_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{
		Watershed: "Bow at Banff", From: from, To: to,
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoData) {
		t.Error("remote failure must not be classified as no-data")
	}
	if got := err.Error(); got != "analysis failed: Not signed up for Earth Engine" {
		t.Errorf("err = %q, want remote message surfaced", got)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	svc := testService(&fakePlatform{})
	from, to := dateRange()

	tests := []struct {
		name string
		run  func() error
	}{
		{"missing watershed", func() error {
			_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{From: from, To: to}, nil)
			return err
		}},
		{"reversed dates", func() error {
			_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{Watershed: "x", From: to, To: from}, nil)
			return err
		}},
		{"equal dates", func() error {
			_, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{Watershed: "x", From: from, To: from}, nil)
			return err
		}},
		{"bad latitude", func() error {
			_, err := svc.AnalyzePoint(context.Background(), PointRequest{Lat: 91, Lon: 0, BufferM: 1000, From: from, To: to}, nil)
			return err
		}},
		{"bad longitude", func() error {
			_, err := svc.AnalyzePoint(context.Background(), PointRequest{Lat: 0, Lon: -181, BufferM: 1000, From: from, To: to}, nil)
			return err
		}},
		{"buffer too small", func() error {
			_, err := svc.AnalyzePoint(context.Background(), PointRequest{Lat: 0, Lon: 0, BufferM: 100, From: from, To: to}, nil)
			return err
		}},
		{"buffer too large", func() error {
			_, err := svc.AnalyzePoint(context.Background(), PointRequest{Lat: 0, Lon: 0, BufferM: 10000, From: from, To: to}, nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAnalyzeWatershedWithFrames(t *testing.T) {
	platform := &fakePlatform{
		size:       2,
		collection: validCollection(),
		frames: []earthengine.CompositeFrame{
			{Month: "2022-01", SnowPercent: 80},
			{Month: "2022-02", SnowPercent: 65},
		},
	}
	svc := testService(platform)

	from, to := dateRange()
	report, err := svc.AnalyzeWatershed(context.Background(), WatershedRequest{
		Watershed: "Bow at Banff", From: from, To: to, IncludeFrames: true,
	}, nil)
	if err != nil {
		t.Fatalf("AnalyzeWatershed() failed: %v", err)
	}
	if len(report.Frames) != 2 {
		t.Errorf("frames = %d, want 2", len(report.Frames))
	}
}

func TestWatersheds(t *testing.T) {
	svc := testService(&fakePlatform{names: []string{"Bow at Banff", "Elbow at Bragg Creek"}})

	names, err := svc.Watersheds(context.Background())
	if err != nil {
		t.Fatalf("Watersheds() failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("got %d names, want 2", len(names))
	}
}
