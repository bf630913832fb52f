package analysis

import (
	"context"
	"sync"
	"time"
)

// BatchConfig holds batch analysis configuration.
type BatchConfig struct {
	Workers int // Number of concurrent workers
}

// BatchResult is the outcome for one watershed in a batch run.
type BatchResult struct {
	Watershed string
	Report    *Report
	Error     error
}

// AnalyzeAllWatersheds runs the watershed analysis for every known
// watershed with a worker pool. Individual failures are carried in the
// results, not returned, so one bad basin does not abort the batch.
func (s *Service) AnalyzeAllWatersheds(ctx context.Context, from, to time.Time, cfg BatchConfig) ([]BatchResult, error) {
	names, err := s.Watersheds(ctx)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}

	s.logger.WithFields(map[string]interface{}{
		"watersheds": len(names),
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
		"workers":    workers,
	}).Info("Starting batch analysis")

	nameCh := make(chan string, len(names))
	resultCh := make(chan BatchResult, len(names))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range nameCh {
				report, err := s.AnalyzeWatershed(ctx, WatershedRequest{
					Watershed: name,
					From:      from,
					To:        to,
				}, nil)
				resultCh <- BatchResult{Watershed: name, Report: report, Error: err}
			}
		}()
	}

	for _, name := range names {
		nameCh <- name
	}
	close(nameCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]BatchResult, 0, len(names))
	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Batch analysis completed")

	return results, nil
}
