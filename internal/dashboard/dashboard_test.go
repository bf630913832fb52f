package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
	"github.com/symfluence/snowcover/backend/internal/snow"
	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/logger"
	"github.com/symfluence/snowcover/backend/pkg/redis"
)

type stubPlatform struct {
	names      []string
	size       int
	collection *earthengine.FeatureCollection
}

func (s *stubPlatform) WatershedNames(ctx context.Context) ([]string, error) { return s.names, nil }

func (s *stubPlatform) WatershedGeometry(name string) earthengine.Expression {
	return earthengine.FeatureCollectionAsset("test").FilterEq("layer", name).First().Geometry()
}

func (s *stubPlatform) PointBuffer(lat, lon, bufferM float64) earthengine.Expression {
	return earthengine.Point(lon, lat).Buffer(bufferM)
}

func (s *stubPlatform) CollectionSize(ctx context.Context, g earthengine.Expression, from, to time.Time) (int, error) {
	return s.size, nil
}

func (s *stubPlatform) SnowSeries(ctx context.Context, g earthengine.Expression, from, to time.Time, opts earthengine.SnowMetricsOptions) (*earthengine.FeatureCollection, error) {
	return s.collection, nil
}

func (s *stubPlatform) MonthlyComposites(ctx context.Context, g earthengine.Expression, from, to time.Time, maxFrames int) ([]earthengine.CompositeFrame, error) {
	return nil, nil
}

func testHandler(platform analysis.Platform) *Handler {
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
	rdb, _ := redis.New(cfg)
	svc := analysis.NewService(platform, nil, redis.NewCache(rdb, "snowcover"), cfg, log)
	return NewHandler(svc, nil, log)
}

func testRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func TestIndexRendersForms(t *testing.T) {
	h := testHandler(&stubPlatform{names: []string{"Bow at Banff", "Elbow at Bragg Creek"}})
	r := testRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Snow Cover Analysis",
		`<option value="Bow at Banff"`,
		`action="/analyze/watershed"`,
		`action="/analyze/point"`,
		`name="buffer_m"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestAnalyzeWatershedRendersReport(t *testing.T) {
	h := testHandler(&stubPlatform{
		names: []string{"Bow at Banff"},
		size:  2,
		collection: &earthengine.FeatureCollection{
			Features: []earthengine.Feature{
				{Properties: map[string]interface{}{"date": "2022-01-15", "snow_cover_percent": 80.0}},
				{Properties: map[string]interface{}{"date": "2022-02-15", "snow_cover_percent": 60.0}},
			},
		},
	})
	r := testRouter(h)

	form := url.Values{
		"watershed": {"Bow at Banff"},
		"from":      {"2022-01-01"},
		"to":        {"2022-12-31"},
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze/watershed", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Watershed: Bow at Banff",
		"Mean snow cover",
		"series-line",
		"Distribution",
		"Seasonal pattern",
		"Annual summary",
		"Snow persistence",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report page missing %q", want)
		}
	}
}

func TestAnalyzeWatershedNoDataShowsMessage(t *testing.T) {
	h := testHandler(&stubPlatform{names: []string{"Bow at Banff"}, size: 0})
	r := testRouter(h)

	form := url.Values{
		"watershed": {"Bow at Banff"},
		"from":      {"2022-01-01"},
		"to":        {"2022-12-31"},
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze/watershed", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "no snow cover data found") {
		t.Error("no-data message not rendered")
	}
}

func TestSeriesChartSVG(t *testing.T) {
	series := snow.Series{Samples: []snow.Sample{
		{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), SnowCoverPercent: 100},
		{Date: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), SnowCoverPercent: 0},
	}}

	svg := string(seriesChartSVG(series, 50))
	if !strings.Contains(svg, "polyline") {
		t.Error("missing series polyline")
	}
	if !strings.Contains(svg, "mean-line") {
		t.Error("missing mean rule")
	}
	if !strings.Contains(svg, "2022-01-01") || !strings.Contains(svg, "2022-01-02") {
		t.Error("missing end date labels")
	}
}

func TestHistogramBars(t *testing.T) {
	bars := histogramBars(snow.Series{Samples: []snow.Sample{
		{SnowCoverPercent: 5},
		{SnowCoverPercent: 7},
		{SnowCoverPercent: 55},
		{SnowCoverPercent: 100},
	}})

	if len(bars) != 10 {
		t.Fatalf("bars = %d", len(bars))
	}
	if bars[0].Label != "0-10%" || bars[0].Count != 2 || bars[0].WidthPct != 100 {
		t.Errorf("first bin = %+v", bars[0])
	}
	if bars[5].Count != 1 || bars[5].WidthPct != 50 {
		t.Errorf("mid bin = %+v", bars[5])
	}
	// 100 percent lands in the top bin
	if bars[9].Label != "90-100%" || bars[9].Count != 1 {
		t.Errorf("top bin = %+v", bars[9])
	}
}

func TestSWEChartSVG(t *testing.T) {
	svg := string(sweChartSVG(snow.Series{
		HasSWE: true,
		Samples: []snow.Sample{
			{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), SWEEstimate: 40},
			{Date: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), SWEEstimate: 10},
		},
	}))
	if !strings.Contains(svg, "swe-line") {
		t.Error("missing swe polyline")
	}
	if !strings.Contains(svg, ">40<") {
		t.Error("missing max tick label")
	}
}

func TestSeasonalBarsOrdered(t *testing.T) {
	bars := seasonalBars(map[int]snow.GroupStats{
		12: {Mean: 90, Count: 3},
		1:  {Mean: 85, Count: 4},
		6:  {Mean: 5, Count: 2},
	})
	if len(bars) != 3 {
		t.Fatalf("bars = %d", len(bars))
	}
	if bars[0].Label != "Jan" || bars[1].Label != "Jun" || bars[2].Label != "Dec" {
		t.Errorf("order = %s, %s, %s", bars[0].Label, bars[1].Label, bars[2].Label)
	}
	if bars[0].WidthPct != 85 {
		t.Errorf("width = %v", bars[0].WidthPct)
	}
}
