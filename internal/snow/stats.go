package snow

import (
	"math"
	"sort"
	"time"
)

// PersistenceThreshold: days above this snow cover percentage count as
// high-snow days.
const PersistenceThreshold = 50.0

// BasicStats is the summary statistics block of one analysis.
type BasicStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	Count  int     `json:"count"`
}

// GroupStats summarizes one month or year bucket.
type GroupStats struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// Persistence summarizes how often the region stayed snow-covered.
type Persistence struct {
	HighSnowDays     int     `json:"high_snow_days"`
	TotalDays        int     `json:"total_days"`
	PersistenceRatio float64 `json:"persistence_ratio"`
}

// PeakTiming locates the maximum observed snow cover.
type PeakTiming struct {
	PeakDate  time.Time `json:"peak_date"`
	PeakDOY   int       `json:"peak_doy"`
	PeakValue float64   `json:"peak_value"`
}

// Stats is the full statistical analysis of a series.
type Stats struct {
	Basic       BasicStats         `json:"basic"`
	Seasonal    map[int]GroupStats `json:"seasonal"` // keyed by month 1-12
	Annual      map[int]GroupStats `json:"annual"`   // keyed by year
	Persistence Persistence        `json:"persistence"`
	Peak        *PeakTiming        `json:"peak_timing,omitempty"`
}

// Analyze computes the full statistics for a series. An empty series
// yields zero-valued stats with no peak.
func Analyze(s Series) Stats {
	stats := Stats{
		Seasonal: groupBy(s, func(sm Sample) int { return sm.Month }),
		Annual:   groupBy(s, func(sm Sample) int { return sm.Year }),
	}

	values := s.Percentages()
	stats.Basic = basicStats(values)

	// Persistence
	high := 0
	for _, v := range values {
		if v > PersistenceThreshold {
			high++
		}
	}
	stats.Persistence = Persistence{
		HighSnowDays: high,
		TotalDays:    len(values),
	}
	if len(values) > 0 {
		stats.Persistence.PersistenceRatio = float64(high) / float64(len(values))
	}

	// Peak timing: first occurrence of the maximum
	if len(s.Samples) > 0 {
		peakIdx := 0
		for i, sm := range s.Samples {
			if sm.SnowCoverPercent > s.Samples[peakIdx].SnowCoverPercent {
				peakIdx = i
			}
		}
		peak := s.Samples[peakIdx]
		doy := peak.DOY
		if doy == 0 {
			doy = peak.Date.YearDay()
		}
		stats.Peak = &PeakTiming{
			PeakDate:  peak.Date,
			PeakDOY:   doy,
			PeakValue: peak.SnowCoverPercent,
		}
	}

	return stats
}

// basicStats computes mean/median/std/min/max/quartiles.
func basicStats(values []float64) BasicStats {
	n := len(values)
	if n == 0 {
		return BasicStats{}
	}

	var sum float64
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(n)

	var sqSum float64
	for _, v := range values {
		d := v - mean
		sqSum += d * d
	}
	// Sample standard deviation, matching the reference analyses
	var std float64
	if n > 1 {
		std = math.Sqrt(sqSum / float64(n-1))
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return BasicStats{
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		Std:    std,
		Min:    min,
		Max:    max,
		Q25:    quantile(sorted, 0.25),
		Q75:    quantile(sorted, 0.75),
		Count:  n,
	}
}

// quantile computes the q-th quantile of sorted values by linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// groupBy buckets samples by a key and summarizes each bucket.
func groupBy(s Series, key func(Sample) int) map[int]GroupStats {
	buckets := make(map[int][]float64)
	for _, sm := range s.Samples {
		k := key(sm)
		buckets[k] = append(buckets[k], sm.SnowCoverPercent)
	}

	out := make(map[int]GroupStats, len(buckets))
	for k, values := range buckets {
		b := basicStats(values)
		out[k] = GroupStats{Mean: b.Mean, Std: b.Std, Count: b.Count}
	}
	return out
}

// MonthName maps a month number to its short label for chart axes.
func MonthName(month int) string {
	names := [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	if month < 1 || month > 12 {
		return ""
	}
	return names[month-1]
}
