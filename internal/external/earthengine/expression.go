package earthengine

// Expression is one node of a server-side computation graph. The whole
// pipeline (filter, mask, reduce) is described as nested expressions
// and evaluated by the platform; nothing is computed locally.
type Expression struct {
	FunctionName string                 `json:"functionName"`
	Arguments    map[string]interface{} `json:"arguments"`
}

// Fixed query conventions for the MOD10A1 snow product. These mirror
// the thresholds the published analyses were produced with and must not
// drift between watershed and point mode.
const (
	// NDSIBand is the per-pixel snow indicator band.
	NDSIBand = "NDSI_Snow_Cover"

	// SnowThreshold: NDSI >= 10 counts as snow-covered.
	SnowThreshold = 10

	// ReduceScaleM is the pixel scale for spatial reductions (meters).
	ReduceScaleM = 500

	// MaxPixelsWatershed caps reduction size over basin geometries.
	MaxPixelsWatershed = 1e9

	// MaxPixelsPoint caps reduction size over point buffers.
	MaxPixelsPoint = 1e6

	// SWEFactor converts mean NDSI to a rough snow water equivalent
	// estimate in millimeters.
	SWEFactor = 50
)

// ImageCollection references an image collection asset by id.
func ImageCollection(id string) Expression {
	return Expression{
		FunctionName: "ImageCollection.load",
		Arguments:    map[string]interface{}{"id": id},
	}
}

// FeatureCollectionAsset references a feature collection asset by id.
func FeatureCollectionAsset(id string) Expression {
	return Expression{
		FunctionName: "FeatureCollection.load",
		Arguments:    map[string]interface{}{"id": id},
	}
}

// FilterDate restricts a collection to [start, end). Dates are
// YYYY-MM-DD strings, matching the platform's date filter.
func (e Expression) FilterDate(start, end string) Expression {
	return Expression{
		FunctionName: "Collection.filterDate",
		Arguments: map[string]interface{}{
			"collection": e,
			"start":      start,
			"end":        end,
		},
	}
}

// FilterBounds restricts a collection to images intersecting geometry.
func (e Expression) FilterBounds(geometry Expression) Expression {
	return Expression{
		FunctionName: "Collection.filterBounds",
		Arguments: map[string]interface{}{
			"collection": e,
			"geometry":   geometry,
		},
	}
}

// FilterEq keeps features whose property equals value.
func (e Expression) FilterEq(property string, value interface{}) Expression {
	return Expression{
		FunctionName: "Collection.filter",
		Arguments: map[string]interface{}{
			"collection": e,
			"filter": Expression{
				FunctionName: "Filter.eq",
				Arguments: map[string]interface{}{
					"name":  property,
					"value": value,
				},
			},
		},
	}
}

// First takes the first element of a collection.
func (e Expression) First() Expression {
	return Expression{
		FunctionName: "Collection.first",
		Arguments:    map[string]interface{}{"collection": e},
	}
}

// Geometry extracts the geometry of a feature.
func (e Expression) Geometry() Expression {
	return Expression{
		FunctionName: "Feature.geometry",
		Arguments:    map[string]interface{}{"feature": e},
	}
}

// Size counts the elements of a collection server-side.
func (e Expression) Size() Expression {
	return Expression{
		FunctionName: "Collection.size",
		Arguments:    map[string]interface{}{"collection": e},
	}
}

// AggregateArrayDistinct collects the distinct values of a property
// across a collection.
func (e Expression) AggregateArrayDistinct(property string) Expression {
	return Expression{
		FunctionName: "Collection.aggregateArrayDistinct",
		Arguments: map[string]interface{}{
			"collection": e,
			"property":   property,
		},
	}
}

// Point builds a point geometry from lon/lat (GeoJSON axis order).
func Point(lon, lat float64) Expression {
	return Expression{
		FunctionName: "GeometryConstructors.Point",
		Arguments: map[string]interface{}{
			"coordinates": []float64{lon, lat},
		},
	}
}

// Buffer grows a geometry by distance meters.
func (e Expression) Buffer(distanceM float64) Expression {
	return Expression{
		FunctionName: "Geometry.buffer",
		Arguments: map[string]interface{}{
			"geometry": e,
			"distance": distanceM,
		},
	}
}

// SnowMetricsOptions parameterizes the per-image snow reduction.
type SnowMetricsOptions struct {
	MaxPixels  float64
	IncludeSWE bool
}

// MapSnowMetrics maps the per-image snow metric computation over an
// image collection: threshold-mask the NDSI band, take the spatial mean
// over the geometry at the fixed pixel scale, and emit one feature per
// image with date, snow_cover_percent, year and month properties
// (plus swe_estimate and doy when IncludeSWE is set).
func (e Expression) MapSnowMetrics(geometry Expression, opts SnowMetricsOptions) Expression {
	return Expression{
		FunctionName: "Collection.mapSnowMetrics",
		Arguments: map[string]interface{}{
			"collection": e,
			"geometry":   geometry,
			"band":       NDSIBand,
			"threshold":  SnowThreshold,
			"scale":      ReduceScaleM,
			"maxPixels":  opts.MaxPixels,
			"includeSwe": opts.IncludeSWE,
			"sweFactor":  SWEFactor,
		},
	}
}

// MeanCompositeSnowFraction reduces a date-filtered collection to the
// mean snow-covered fraction of the geometry, used for the monthly
// animation frames.
func (e Expression) MeanCompositeSnowFraction(geometry Expression) Expression {
	return Expression{
		FunctionName: "Collection.meanCompositeSnowFraction",
		Arguments: map[string]interface{}{
			"collection": e,
			"geometry":   geometry,
			"band":       NDSIBand,
			"threshold":  SnowThreshold,
			"scale":      ReduceScaleM,
		},
	}
}
