package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/snow"
)

func sampleReport() *analysis.Report {
	series := snow.Series{
		Samples: []snow.Sample{
			{Date: time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC), SnowCoverPercent: 82.33333333333333, Year: 2022, Month: 1},
			{Date: time.Date(2022, 2, 10, 0, 0, 0, 0, time.UTC), SnowCoverPercent: 61.5, Year: 2022, Month: 2},
		},
	}
	return &analysis.Report{
		ID:              7,
		Mode:            analysis.ModeWatershed,
		Watershed:       "Bow at Banff",
		From:            time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		To:              time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		ImagesProcessed: 2,
		Series:          series,
		Stats:           snow.Analyze(series),
		DataSource:      "MODIS/061/MOD10A1",
		CreatedAt:       time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func pointReport() *analysis.Report {
	series := snow.Series{
		HasSWE: true,
		Samples: []snow.Sample{
			{Date: time.Date(2022, 2, 10, 0, 0, 0, 0, time.UTC), SnowCoverPercent: 60, Year: 2022, Month: 2, SWEEstimate: 30.25, DOY: 41},
		},
	}
	return &analysis.Report{
		Mode:    analysis.ModePoint,
		Lat:     51.1784,
		Lon:     -115.5708,
		BufferM: 1000,
		From:    time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		Series:  series,
		Stats:   snow.Analyze(series),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{"txt", FormatText, false},
		{"text", FormatText, false},
		{"xlsx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	wantHeader := []string{"date", "snow_cover_percent", "year", "month"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	// Full precision survives the round trip
	got, err := strconv.ParseFloat(records[1][1], 64)
	if err != nil {
		t.Fatalf("parsing metric: %v", err)
	}
	if got != report.Series.Samples[0].SnowCoverPercent {
		t.Errorf("round trip lost precision: %v != %v", got, report.Series.Samples[0].SnowCoverPercent)
	}
	if records[1][0] != "2022-01-15" {
		t.Errorf("date = %q, want 2022-01-15", records[1][0])
	}
}

func TestWriteCSVPointColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, pointReport()); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(records[0]) != 6 {
		t.Fatalf("got %d columns, want 6 in point mode", len(records[0]))
	}
	if records[0][4] != "swe_estimate" || records[0][5] != "doy" {
		t.Errorf("point columns = %v", records[0][4:])
	}
	if records[1][5] != "41" {
		t.Errorf("doy = %q, want 41", records[1][5])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	var decoded analysis.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if decoded.Watershed != "Bow at Banff" {
		t.Errorf("watershed = %q", decoded.Watershed)
	}
	if decoded.Stats.Basic.Count != 2 {
		t.Errorf("stats count = %d, want 2", decoded.Stats.Basic.Count)
	}
	if decoded.Series.Len() != 2 {
		t.Errorf("series rows = %d, want 2", decoded.Series.Len())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteText() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"SNOW COVER ANALYSIS REPORT",
		"Watershed:        Bow at Banff",
		"Period:           2022-01-01 to 2022-12-31",
		"Images processed: 2",
		"SEASONAL PATTERN",
		"ANNUAL TREND",
		"SNOW PERSISTENCE",
		"PEAK SNOW COVER",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestWriteTextPointLocation(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, pointReport()); err != nil {
		t.Fatalf("WriteText() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Location:         51.1784, -115.5708 (buffer 1000 m)") {
		t.Errorf("point location line missing:\n%s", buf.String())
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(sampleReport(), FormatCSV); got != "snow_cover_Bow_at_Banff_2022-01-01_2022-12-31.csv" {
		t.Errorf("Filename() = %q", got)
	}
	if got := Filename(pointReport(), FormatText); got != "snow_cover_51.1784_-115.5708_2022-01-01_2022-12-31.txt" {
		t.Errorf("point Filename() = %q", got)
	}
}

func TestContentType(t *testing.T) {
	if FormatCSV.ContentType() != "text/csv" {
		t.Error("csv content type")
	}
	if FormatJSON.ContentType() != "application/json" {
		t.Error("json content type")
	}
	if FormatText.ContentType() != "text/plain" {
		t.Error("text content type")
	}
}
