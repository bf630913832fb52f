package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/export"
)

// analyzeCmd runs a one-shot analysis from the command line and writes
// the export files, without needing the API server or the database.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot analysis",
	Long: `Runs a single analysis and writes csv, json and txt exports.

Subcommands:
  watershed  - Analyze a named watershed
  point      - Analyze a buffered point

Example:
  go run ./cmd/snowcover analyze watershed --watershed "Bow at Banff" --from 2022-01-01 --to 2022-12-31
  go run ./cmd/snowcover analyze point --lat 51.1784 --lon -115.5708 --buffer 1000 --from 2022-01-01 --to 2022-12-31`,
}

var (
	analyzeWatershedCmd = &cobra.Command{
		Use:   "watershed",
		Short: "Analyze a named watershed",
		RunE:  runAnalyzeWatershed,
	}

	analyzePointCmd = &cobra.Command{
		Use:   "point",
		Short: "Analyze a buffered point",
		RunE:  runAnalyzePoint,
	}

	analyzeAllCmd = &cobra.Command{
		Use:   "all",
		Short: "Analyze every watershed",
		RunE:  runAnalyzeAll,
	}
)

var (
	analyzeWatershedName string
	analyzeLat           float64
	analyzeLon           float64
	analyzeBufferM       float64
	analyzeFrom          string
	analyzeTo            string
	analyzeOutDir        string
	analyzeFormats       []string
	analyzeWorkers       int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeWatershedCmd)
	analyzeCmd.AddCommand(analyzePointCmd)
	analyzeCmd.AddCommand(analyzeAllCmd)

	analyzeAllCmd.Flags().IntVar(&analyzeWorkers, "workers", 3, "concurrent analyses")

	analyzeWatershedCmd.Flags().StringVar(&analyzeWatershedName, "watershed", "", "watershed name (required)")
	analyzeWatershedCmd.MarkFlagRequired("watershed")

	analyzePointCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "latitude (required)")
	analyzePointCmd.Flags().Float64Var(&analyzeLon, "lon", 0, "longitude (required)")
	analyzePointCmd.Flags().Float64Var(&analyzeBufferM, "buffer", 0, "buffer radius in meters (default from config)")
	analyzePointCmd.MarkFlagRequired("lat")
	analyzePointCmd.MarkFlagRequired("lon")

	for _, c := range []*cobra.Command{analyzeWatershedCmd, analyzePointCmd, analyzeAllCmd} {
		c.Flags().StringVar(&analyzeFrom, "from", "", "start date YYYY-MM-DD (required)")
		c.Flags().StringVar(&analyzeTo, "to", "", "end date YYYY-MM-DD (required)")
		c.Flags().StringVar(&analyzeOutDir, "out", ".", "output directory")
		c.Flags().StringSliceVar(&analyzeFormats, "format", []string{"csv", "json", "txt"}, "export formats")
		c.MarkFlagRequired("from")
		c.MarkFlagRequired("to")
	}
}

func runAnalyzeWatershed(cmd *cobra.Command, args []string) error {
	from, to, err := parseAnalyzeDates()
	if err != nil {
		return err
	}

	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	fmt.Printf("Analyzing watershed %q from %s to %s\n", analyzeWatershedName, analyzeFrom, analyzeTo)

	report, err := d.service.AnalyzeWatershed(context.Background(), analysis.WatershedRequest{
		Watershed: analyzeWatershedName,
		From:      from,
		To:        to,
	}, printProgress)
	if err != nil {
		return err
	}

	return writeExports(report)
}

func runAnalyzePoint(cmd *cobra.Command, args []string) error {
	from, to, err := parseAnalyzeDates()
	if err != nil {
		return err
	}

	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	bufferM := analyzeBufferM
	if bufferM == 0 {
		bufferM = d.cfg.Analysis.DefaultBufferM
	}

	fmt.Printf("Analyzing point %.4f, %.4f (buffer %.0f m) from %s to %s\n",
		analyzeLat, analyzeLon, bufferM, analyzeFrom, analyzeTo)

	report, err := d.service.AnalyzePoint(context.Background(), analysis.PointRequest{
		Lat:     analyzeLat,
		Lon:     analyzeLon,
		BufferM: bufferM,
		From:    from,
		To:      to,
	}, printProgress)
	if err != nil {
		return err
	}

	return writeExports(report)
}

func runAnalyzeAll(cmd *cobra.Command, args []string) error {
	from, to, err := parseAnalyzeDates()
	if err != nil {
		return err
	}

	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	fmt.Printf("Analyzing all watersheds from %s to %s (%d workers)\n\n",
		analyzeFrom, analyzeTo, analyzeWorkers)

	results, err := d.service.AnalyzeAllWatersheds(context.Background(), from, to,
		analysis.BatchConfig{Workers: analyzeWorkers})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Printf("  FAIL %-30s %v\n", r.Watershed, r.Error)
			continue
		}
		fmt.Printf("  OK   %-30s mean %.2f%% (%d samples)\n",
			r.Watershed, r.Report.Stats.Basic.Mean, r.Report.Series.Len())
		if err := writeExports(r.Report); err != nil {
			return err
		}
	}

	fmt.Printf("\n%d analyzed, %d failed\n", len(results)-failed, failed)
	return nil
}

func parseAnalyzeDates() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", analyzeFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
	}
	to, err := time.Parse("2006-01-02", analyzeTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
	}
	return from, to, nil
}

func printProgress(percent int, stage string) {
	fmt.Printf("  [%3d%%] %s\n", percent, stage)
}

func writeExports(report *analysis.Report) error {
	fmt.Printf("\nProcessed %d images, %d samples\n", report.ImagesProcessed, report.Series.Len())
	fmt.Printf("Mean snow cover: %.2f%%\n\n", report.Stats.Basic.Mean)

	for _, f := range analyzeFormats {
		format, err := export.ParseFormat(strings.TrimSpace(f))
		if err != nil {
			return err
		}

		path := filepath.Join(analyzeOutDir, export.Filename(report, format))
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		if err := export.Write(file, report, format); err != nil {
			file.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}
