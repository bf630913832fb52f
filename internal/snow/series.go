package snow

import (
	"time"

	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
)

// Sample is one row of the in-memory analysis table: the reduced snow
// metrics for a single satellite image. Rows are immutable once built.
type Sample struct {
	Date             time.Time `json:"date"`
	SnowCoverPercent float64   `json:"snow_cover_percent"`
	Year             int       `json:"year"`
	Month            int       `json:"month"`

	// Point-mode extras
	SWEEstimate float64 `json:"swe_estimate,omitempty"`
	DOY         int     `json:"doy,omitempty"`
}

// Series is the ordered table of samples for one analysis.
type Series struct {
	Samples []Sample `json:"samples"`
	HasSWE  bool     `json:"has_swe"`
}

// FromFeatureCollection reshapes a platform feature collection into a
// series: one row per feature with a non-null metric, in the feature
// order the platform returned (date order). Rows with a null
// snow_cover_percent are dropped, never zero-filled.
func FromFeatureCollection(fc *earthengine.FeatureCollection, withSWE bool) Series {
	s := Series{HasSWE: withSWE}
	if fc == nil {
		return s
	}

	for _, f := range fc.Features {
		pct, ok := f.FloatProp("snow_cover_percent")
		if !ok {
			continue
		}

		dateStr, ok := f.StringProp("date")
		if !ok {
			continue
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		sample := Sample{
			Date:             date,
			SnowCoverPercent: clampPercent(pct),
		}

		if year, ok := f.IntProp("year"); ok {
			sample.Year = year
		} else {
			sample.Year = date.Year()
		}
		if month, ok := f.IntProp("month"); ok {
			sample.Month = month
		} else {
			sample.Month = int(date.Month())
		}

		if withSWE {
			if swe, ok := f.FloatProp("swe_estimate"); ok {
				sample.SWEEstimate = swe
			}
			if doy, ok := f.IntProp("doy"); ok {
				sample.DOY = doy
			} else {
				sample.DOY = date.YearDay()
			}
		}

		s.Samples = append(s.Samples, sample)
	}

	return s
}

// clampPercent keeps the metric inside [0,100]. The platform's mean of
// a 0/1 mask times 100 should already be in range; rounding at the
// service boundary can nudge it out.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Empty reports whether the series has no usable rows.
func (s Series) Empty() bool {
	return len(s.Samples) == 0
}

// Len returns the number of rows.
func (s Series) Len() int {
	return len(s.Samples)
}

// Percentages returns the metric column.
func (s Series) Percentages() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.SnowCoverPercent
	}
	return out
}
