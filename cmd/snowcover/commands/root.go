package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snowcover",
	Short: "Snow cover analysis backend",
	Long: `Snow cover analysis backend

Queries daily MODIS snow cover imagery for watersheds and buffered
points, computes time series statistics, and serves results over a
REST API and a server-rendered dashboard.

Usage:
  go run ./cmd/snowcover [command]

Examples:
  go run ./cmd/snowcover api
  go run ./cmd/snowcover watersheds
  go run ./cmd/snowcover analyze watershed --watershed "Bow at Banff" --from 2022-01-01 --to 2022-12-31
  go run ./cmd/snowcover scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
