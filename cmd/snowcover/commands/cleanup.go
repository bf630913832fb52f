package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd deletes reports past the retention window once,
// outside of the scheduled job.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete reports past retention",
	Long: `Deletes analysis reports older than the retention window
(REPORT_RETENTION, default 90 days).

Example:
  go run ./cmd/snowcover cleanup
  go run ./cmd/snowcover cleanup --older-than 720h`,
	RunE: runCleanup,
}

var cleanupOlderThan time.Duration

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 0, "override retention window (e.g. 720h)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	d, err := initDeps(true)
	if err != nil {
		return err
	}
	defer d.close()

	retention := d.cfg.Analysis.ReportRetention
	if cleanupOlderThan > 0 {
		retention = cleanupOlderThan
	}
	cutoff := time.Now().Add(-retention)

	fmt.Printf("Deleting reports created before %s\n", cutoff.Format("2006-01-02 15:04:05"))

	deleted, err := d.repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		return fmt.Errorf("delete old reports: %w", err)
	}

	fmt.Printf("Deleted %d reports\n", deleted)
	return nil
}
