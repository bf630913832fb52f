// Package export renders completed analysis reports into the
// downloadable formats the dashboard offers: CSV for the raw table,
// JSON for the full report, and a plain-text summary.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/snow"
)

// Format identifies one export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "txt"
)

// ParseFormat validates a format query parameter.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type for HTTP downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain"
	}
}

// Write renders the report in the given format.
func Write(w io.Writer, report *analysis.Report, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, report)
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatText:
		return WriteText(w, report)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

// Filename builds the download filename for a report and format.
func Filename(report *analysis.Report, format Format) string {
	label := strings.ReplaceAll(report.Label(), " ", "_")
	return fmt.Sprintf("snow_cover_%s_%s_%s.%s",
		label,
		report.From.Format("2006-01-02"),
		report.To.Format("2006-01-02"),
		format)
}

// WriteCSV writes the raw sample table. Values keep full float
// precision so a round trip through the file loses nothing.
func WriteCSV(w io.Writer, report *analysis.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "snow_cover_percent", "year", "month"}
	if report.Series.HasSWE {
		header = append(header, "swe_estimate", "doy")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range report.Series.Samples {
		row := []string{
			s.Date.Format("2006-01-02"),
			formatFloat(s.SnowCoverPercent),
			strconv.Itoa(s.Year),
			strconv.Itoa(s.Month),
		}
		if report.Series.HasSWE {
			row = append(row, formatFloat(s.SWEEstimate), strconv.Itoa(s.DOY))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatFloat renders with the shortest representation that parses
// back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteJSON writes the full report, indented for readability.
func WriteJSON(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteText writes the human-readable summary report.
func WriteText(w io.Writer, report *analysis.Report) error {
	var b strings.Builder

	b.WriteString("SNOW COVER ANALYSIS REPORT\n")
	b.WriteString("==========================\n\n")

	if report.Mode == analysis.ModePoint {
		fmt.Fprintf(&b, "Location:         %.4f, %.4f (buffer %.0f m)\n",
			report.Lat, report.Lon, report.BufferM)
	} else {
		fmt.Fprintf(&b, "Watershed:        %s\n", report.Watershed)
	}
	fmt.Fprintf(&b, "Period:           %s to %s\n",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
	fmt.Fprintf(&b, "Data source:      %s\n", report.DataSource)
	fmt.Fprintf(&b, "Images processed: %d\n", report.ImagesProcessed)
	fmt.Fprintf(&b, "Samples:          %d\n\n", report.Series.Len())

	basic := report.Stats.Basic
	b.WriteString("SUMMARY STATISTICS\n")
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "Mean:    %6.2f%%\n", basic.Mean)
	fmt.Fprintf(&b, "Median:  %6.2f%%\n", basic.Median)
	fmt.Fprintf(&b, "Std dev: %6.2f%%\n", basic.Std)
	fmt.Fprintf(&b, "Min:     %6.2f%%\n", basic.Min)
	fmt.Fprintf(&b, "Max:     %6.2f%%\n", basic.Max)
	fmt.Fprintf(&b, "Q25:     %6.2f%%\n", basic.Q25)
	fmt.Fprintf(&b, "Q75:     %6.2f%%\n\n", basic.Q75)

	if len(report.Stats.Seasonal) > 0 {
		b.WriteString("SEASONAL PATTERN\n")
		b.WriteString("----------------\n")
		for _, month := range sortedKeys(report.Stats.Seasonal) {
			g := report.Stats.Seasonal[month]
			fmt.Fprintf(&b, "%s: %6.2f%% (±%.2f, n=%d)\n",
				snow.MonthName(month), g.Mean, g.Std, g.Count)
		}
		b.WriteString("\n")
	}

	if len(report.Stats.Annual) > 0 {
		b.WriteString("ANNUAL TREND\n")
		b.WriteString("------------\n")
		for _, year := range sortedKeys(report.Stats.Annual) {
			g := report.Stats.Annual[year]
			fmt.Fprintf(&b, "%d: %6.2f%% (±%.2f, n=%d)\n", year, g.Mean, g.Std, g.Count)
		}
		b.WriteString("\n")
	}

	p := report.Stats.Persistence
	b.WriteString("SNOW PERSISTENCE\n")
	b.WriteString("----------------\n")
	fmt.Fprintf(&b, "Days above %.0f%%: %d of %d (%.1f%%)\n\n",
		snow.PersistenceThreshold, p.HighSnowDays, p.TotalDays, p.PersistenceRatio*100)

	if peak := report.Stats.Peak; peak != nil {
		b.WriteString("PEAK SNOW COVER\n")
		b.WriteString("---------------\n")
		fmt.Fprintf(&b, "%.2f%% on %s (day %d of year)\n",
			peak.PeakValue, peak.PeakDate.Format("2006-01-02"), peak.PeakDOY)
	}

	fmt.Fprintf(&b, "\nGenerated: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	_, err := io.WriteString(w, b.String())
	return err
}

func sortedKeys(m map[int]snow.GroupStats) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
