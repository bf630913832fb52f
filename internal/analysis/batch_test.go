package analysis

import (
	"context"
	"testing"
)

func TestAnalyzeAllWatersheds(t *testing.T) {
	platform := &fakePlatform{
		names:      []string{"Bow at Banff", "Elbow at Bragg Creek", "Ghost River"},
		size:       2,
		collection: validCollection(),
	}
	svc := testService(platform)

	from, to := dateRange()
	results, err := svc.AnalyzeAllWatersheds(context.Background(), from, to, BatchConfig{Workers: 2})
	if err != nil {
		t.Fatalf("AnalyzeAllWatersheds() failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("%s failed: %v", r.Watershed, r.Error)
		}
		if r.Report == nil || r.Report.Series.Len() != 2 {
			t.Errorf("%s report incomplete", r.Watershed)
		}
	}
}

func TestAnalyzeAllWatershedsCarriesFailures(t *testing.T) {
	platform := &fakePlatform{
		names: []string{"Empty Basin"},
		size:  0,
	}
	svc := testService(platform)

	from, to := dateRange()
	results, err := svc.AnalyzeAllWatersheds(context.Background(), from, to, BatchConfig{Workers: 1})
	if err != nil {
		t.Fatalf("AnalyzeAllWatersheds() failed: %v", err)
	}
	if len(results) != 1 || results[0].Error == nil {
		t.Errorf("expected carried per-watershed failure, got %+v", results)
	}
}
