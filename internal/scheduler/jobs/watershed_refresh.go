package jobs

import (
	"context"
	"fmt"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// WatershedRefreshJob repopulates the watershed list cache so the
// dropdown never serves a cold cache during working hours.
type WatershedRefreshJob struct {
	service *analysis.Service
	logger  *logger.Logger
}

// NewWatershedRefreshJob creates a new watershed refresh job
func NewWatershedRefreshJob(service *analysis.Service, log *logger.Logger) *WatershedRefreshJob {
	return &WatershedRefreshJob{
		service: service,
		logger:  log,
	}
}

// Name returns the job name
func (j *WatershedRefreshJob) Name() string {
	return "watershed_refresh"
}

// Schedule returns the cron schedule (hourly, before the 1h cache TTL expires)
func (j *WatershedRefreshJob) Schedule() string {
	return "0 55 * * * *"
}

// Run refreshes the watershed list cache
func (j *WatershedRefreshJob) Run(ctx context.Context) error {
	count, err := j.service.RefreshWatersheds(ctx)
	if err != nil {
		return fmt.Errorf("refresh watersheds: %w", err)
	}

	j.logger.WithField("count", count).Info("Watershed list refreshed")
	return nil
}
