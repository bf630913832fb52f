package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// ReportCleanupJob deletes reports older than the retention window.
type ReportCleanupJob struct {
	repo      *analysis.Repository
	retention time.Duration
	logger    *logger.Logger
}

// NewReportCleanupJob creates a new report cleanup job
func NewReportCleanupJob(repo *analysis.Repository, cfg *config.Config, log *logger.Logger) *ReportCleanupJob {
	return &ReportCleanupJob{
		repo:      repo,
		retention: cfg.Analysis.ReportRetention,
		logger:    log,
	}
}

// Name returns the job name
func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

// Schedule returns the cron schedule (3:30 AM daily)
func (j *ReportCleanupJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run deletes reports past retention
func (j *ReportCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete old reports: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff.Format("2006-01-02"),
	}).Info("Report cleanup completed")
	return nil
}
