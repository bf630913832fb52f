package analysis

import (
	"fmt"
	"time"

	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
	"github.com/symfluence/snowcover/backend/internal/snow"
)

// Analysis modes.
const (
	ModeWatershed = "watershed"
	ModePoint     = "point"
)

// Report is one completed analysis: the reshaped table, its
// statistics, and the inputs that produced them.
type Report struct {
	ID   int64  `json:"id,omitempty"`
	Mode string `json:"mode"`

	// Watershed mode
	Watershed string `json:"watershed,omitempty"`

	// Point mode
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	BufferM float64 `json:"buffer_m,omitempty"`

	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	ImagesProcessed int       `json:"images_processed"`

	Series snow.Series `json:"series"`
	Stats  snow.Stats  `json:"stats"`

	Frames []earthengine.CompositeFrame `json:"frames,omitempty"`

	DataSource string    `json:"data_source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Label returns a human-readable identifier for filenames and titles.
func (r *Report) Label() string {
	if r.Mode == ModePoint {
		// Fixed 4 decimals, matching the original export filenames
		return fmt.Sprintf("%.4f_%.4f", r.Lat, r.Lon)
	}
	return r.Watershed
}
