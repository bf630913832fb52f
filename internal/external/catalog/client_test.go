package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

const datasetPage = `<!DOCTYPE html>
<html><head><title>catalog</title></head><body>
<h1 class="devsite-page-title">MOD10A1.061 Terra Snow Cover Daily Global 500m</h1>
<div class="ee-description">
  <p>The MOD10A1 V6.1 product provides daily snow cover at 500m resolution.</p>
</div>
<dl>
  <dt>Dataset Availability</dt><dd>2000-02-24T00:00:00Z - Present</dd>
  <dt>Dataset Provider</dt><dd>NASA NSIDC DAAC at CIRES</dd>
</dl>
<table class="eecat">
  <tr><th>Name</th><th>Units</th><th>Description</th></tr>
  <tr><td>NDSI_Snow_Cover</td><td>%</td><td>NDSI snow cover.</td></tr>
  <tr><td>Snow_Albedo_Daily_Tile</td><td></td><td>Snow albedo percentage.</td></tr>
</table>
<span class="ee-tag">snow</span>
<span class="ee-tag">modis</span>
</body></html>`

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Catalog:   config.CatalogConfig{BaseURL: server.URL},
	}
	log := logger.New(cfg)
	return NewClient(httputil.New(cfg, log), cfg, log), server
}

func TestFetchDataset(t *testing.T) {
	var requestedPath string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write([]byte(datasetPage))
	})

	ds, err := client.FetchDataset(context.Background(), "MODIS_061_MOD10A1")
	if err != nil {
		t.Fatalf("FetchDataset() failed: %v", err)
	}

	if requestedPath != "/MODIS_061_MOD10A1" {
		t.Errorf("requested path = %q", requestedPath)
	}
	if ds.ID != "MODIS_061_MOD10A1" {
		t.Errorf("ID = %q", ds.ID)
	}
	if ds.Title != "MOD10A1.061 Terra Snow Cover Daily Global 500m" {
		t.Errorf("Title = %q", ds.Title)
	}
	if ds.Provider != "NASA NSIDC DAAC at CIRES" {
		t.Errorf("Provider = %q", ds.Provider)
	}
	if ds.Availability != "2000-02-24T00:00:00Z - Present" {
		t.Errorf("Availability = %q", ds.Availability)
	}
	if len(ds.Bands) != 2 {
		t.Fatalf("bands = %d, want 2", len(ds.Bands))
	}
	if ds.Bands[0].Name != "NDSI_Snow_Cover" || ds.Bands[0].Units != "%" {
		t.Errorf("band[0] = %+v", ds.Bands[0])
	}
	if len(ds.Tags) != 2 || ds.Tags[0] != "snow" {
		t.Errorf("tags = %v", ds.Tags)
	}
	if ds.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestFetchDatasetNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.FetchDataset(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestParseDatasetHTMLNoTitle(t *testing.T) {
	if _, err := parseDatasetHTML("<html><body><p>nothing</p></body></html>"); err == nil {
		t.Fatal("expected error for page without title")
	}
}
