package earthengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

func testEEClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		EarthEngine: config.EarthEngineConfig{
			BaseURL:        baseURL,
			Project:        "ee-test",
			AccessToken:    "test-token",
			WatershedAsset: "projects/ee-test/assets/merged_lumped",
			SnowCollection: "MODIS/061/MOD10A1",
			RateLimit:      1000, // effectively unlimited in tests
		},
	}
	log := logger.New(cfg)
	return NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
}

func TestWatershedNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/ee-test/value:compute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}

		var req computeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Expression.FunctionName != "Collection.aggregateArrayDistinct" {
			t.Errorf("expression = %s", req.Expression.FunctionName)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []string{"Elbow at Bragg Creek", "Bow at Banff", "Athabasca at Hinton"},
		})
	}))
	defer srv.Close()

	c := testEEClient(t, srv.URL)
	names, err := c.WatershedNames(context.Background())
	if err != nil {
		t.Fatalf("WatershedNames() failed: %v", err)
	}

	want := []string{"Athabasca at Hinton", "Bow at Banff", "Elbow at Bragg Creek"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s (sorted)", i, names[i], want[i])
		}
	}
}

func TestSnowSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"type": "FeatureCollection",
				"features": []map[string]interface{}{
					{
						"type": "Feature",
						"properties": map[string]interface{}{
							"date":               "2022-01-15",
							"snow_cover_percent": 82.5,
							"year":               2022,
							"month":              1,
						},
					},
					{
						"type": "Feature",
						"properties": map[string]interface{}{
							"date":               "2022-01-16",
							"snow_cover_percent": nil,
							"year":               2022,
							"month":              1,
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := testEEClient(t, srv.URL)
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)

	fc, err := c.SnowSeries(context.Background(), c.WatershedGeometry("Bow at Banff"), from, to,
		SnowMetricsOptions{MaxPixels: MaxPixelsWatershed})
	if err != nil {
		t.Fatalf("SnowSeries() failed: %v", err)
	}

	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}

	pct, ok := fc.Features[0].FloatProp("snow_cover_percent")
	if !ok || pct != 82.5 {
		t.Errorf("snow_cover_percent = %v (ok=%v), want 82.5", pct, ok)
	}

	// Null metric must report ok=false, not zero
	if _, ok := fc.Features[1].FloatProp("snow_cover_percent"); ok {
		t.Error("null snow_cover_percent reported ok=true")
	}
}

func TestComputeValueSurfacesPlatformError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    403,
				"message": "Not signed up for Earth Engine",
				"status":  "PERMISSION_DENIED",
			},
		})
	}))
	defer srv.Close()

	c := testEEClient(t, srv.URL)
	_, err := c.ComputeValue(context.Background(), ImageCollection("MODIS/061/MOD10A1").Size())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "compute failed: Not signed up for Earth Engine" {
		t.Errorf("error = %q, want platform message surfaced verbatim", got)
	}
}

func TestCollectionSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req computeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Expression.FunctionName != "Collection.size" {
			t.Errorf("expression = %s, want Collection.size", req.Expression.FunctionName)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": 42})
	}))
	defer srv.Close()

	c := testEEClient(t, srv.URL)
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)

	size, err := c.CollectionSize(context.Background(), c.PointBuffer(51.18, -115.57, 1000), from, to)
	if err != nil {
		t.Fatalf("CollectionSize() failed: %v", err)
	}
	if size != 42 {
		t.Errorf("size = %d, want 42", size)
	}
}

func TestMonthlyComposites(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Second month has no imagery: null fraction
		if calls == 2 {
			json.NewEncoder(w).Encode(map[string]interface{}{"result": nil})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": 0.75})
	}))
	defer srv.Close()

	c := testEEClient(t, srv.URL)
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC)

	frames, err := c.MonthlyComposites(context.Background(), c.WatershedGeometry("Bow at Banff"), from, to, 12)
	if err != nil {
		t.Fatalf("MonthlyComposites() failed: %v", err)
	}

	if calls != 3 {
		t.Errorf("made %d compute calls, want 3 (one per month)", calls)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2 (null month skipped)", len(frames))
	}
	if frames[0].Month != "2022-01" || frames[1].Month != "2022-03" {
		t.Errorf("frame months = %s, %s", frames[0].Month, frames[1].Month)
	}
	if frames[0].SnowPercent != 75 {
		t.Errorf("SnowPercent = %f, want 75 (fraction * 100)", frames[0].SnowPercent)
	}
}
