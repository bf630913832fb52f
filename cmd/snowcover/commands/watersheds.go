package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// watershedsCmd lists the available watershed names
var watershedsCmd = &cobra.Command{
	Use:   "watersheds",
	Short: "List available watersheds",
	Long: `Lists the watershed names available for analysis.

Example:
  go run ./cmd/snowcover watersheds`,
	RunE: runWatersheds,
}

func init() {
	rootCmd.AddCommand(watershedsCmd)
}

func runWatersheds(cmd *cobra.Command, args []string) error {
	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	names, err := d.service.Watersheds(context.Background())
	if err != nil {
		return fmt.Errorf("load watersheds: %w", err)
	}

	fmt.Printf("Available watersheds (%d):\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}

	return nil
}
