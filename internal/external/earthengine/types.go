package earthengine

import (
	"encoding/json"
)

// FeatureCollection is the platform's response structure: a list of
// records, each carrying computed properties for one input image.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single record in a feature collection.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *GeoJSON               `json:"geometry,omitempty"`
	Properties map[string]interface{} `json:"properties"`
}

// GeoJSON carries a raw geometry. The service never interprets
// coordinates locally; geometries are referenced server-side.
type GeoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// StringProp returns a string property of the feature.
func (f Feature) StringProp(key string) (string, bool) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// FloatProp returns a numeric property of the feature. A missing or
// null property reports ok=false; reductions over fully masked regions
// come back null.
func (f Feature) FloatProp(key string) (float64, bool) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		fl, err := n.Float64()
		return fl, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// IntProp returns an integer property of the feature.
func (f Feature) IntProp(key string) (int, bool) {
	fl, ok := f.FloatProp(key)
	if !ok {
		return 0, false
	}
	return int(fl), true
}
