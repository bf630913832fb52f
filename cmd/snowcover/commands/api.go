package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/symfluence/snowcover/backend/internal/api"
	"github.com/symfluence/snowcover/backend/internal/api/handlers"
	"github.com/symfluence/snowcover/backend/internal/dashboard"
	"github.com/symfluence/snowcover/backend/internal/external/catalog"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server and the web dashboard.

Endpoints:
  GET  /health                      - Health check
  GET  /api/watersheds              - Available watersheds
  POST /api/analysis/watershed      - Watershed analysis
  POST /api/analysis/point          - Point-and-buffer analysis
  GET  /api/reports                 - Analysis history
  GET  /api/reports/:id             - One report
  GET  /api/reports/:id/export      - Download csv/json/txt
  GET  /api/datasets/:id            - Dataset catalog metadata
  GET  /ws/analysis                 - Analysis with streamed progress
  GET  /                            - Web dashboard

Example:
  go run ./cmd/snowcover api
  go run ./cmd/snowcover api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Snow Cover API Server ===")

	d, err := initDeps(true)
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	log := d.log
	log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	// Catalog scraping gets its own short-timeout client
	catalogClient := catalog.NewClient(httputil.New(d.cfg, log), d.cfg, log)

	analysisHandler := handlers.NewAnalysisHandler(d.service, log)
	reportHandler := handlers.NewReportHandler(d.repo, log)
	catalogHandler := handlers.NewCatalogHandler(catalogClient, d.cache, log)
	wsHandler := handlers.NewWSHandler(d.service, log)
	ui := dashboard.NewHandler(d.service, d.repo, log)

	router := api.NewRouter(analysisHandler, reportHandler, catalogHandler, wsHandler, ui, log)
	server := api.New(d.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
