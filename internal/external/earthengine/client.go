package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// Client handles communication with the Earth Engine REST API.
// All remote geospatial queries go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter

	baseURL     string
	project     string
	accessToken string

	watershedAsset string
	snowCollection string
}

// NewClient creates a new Earth Engine client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		logger:         log.WithField("module", "earthengine"),
		limiter:        rate.NewLimiter(rate.Limit(cfg.EarthEngine.RateLimit), 1),
		baseURL:        cfg.EarthEngine.BaseURL,
		project:        cfg.EarthEngine.Project,
		accessToken:    cfg.EarthEngine.AccessToken,
		watershedAsset: cfg.EarthEngine.WatershedAsset,
		snowCollection: cfg.EarthEngine.SnowCollection,
	}
}

// computeRequest is the value:compute request body.
type computeRequest struct {
	Expression Expression `json:"expression"`
}

// computeResponse is the value:compute response envelope.
type computeResponse struct {
	Result json.RawMessage `json:"result"`
}

// apiError is the platform's error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ComputeValue evaluates an expression server-side and returns the raw
// result value. The call blocks until the platform finishes the
// reduction; there is no async job handling.
func (c *Client) ComputeValue(ctx context.Context, expr Expression) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(computeRequest{Expression: expr})
	if err != nil {
		return nil, fmt.Errorf("marshal expression: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/value:compute", c.baseURL, c.project)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compute request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compute failed: %s", decodeAPIError(resp.StatusCode, respBody))
	}

	var computed computeResponse
	if err := json.Unmarshal(respBody, &computed); err != nil {
		return nil, fmt.Errorf("decode compute response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"function": expr.FunctionName,
		"duration": time.Since(start),
	}).Debug("Computed expression")

	return computed.Result, nil
}

// authorize attaches the bearer token when one is configured.
func (c *Client) authorize(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
}

// decodeAPIError extracts the platform error message, falling back to
// the raw body. The message is surfaced to the user verbatim.
func decodeAPIError(status int, body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return fmt.Sprintf("unexpected status code %d", status)
}

// WatershedNames returns the sorted distinct watershed names from the
// watershed asset's `layer` property.
func (c *Client) WatershedNames(ctx context.Context) ([]string, error) {
	expr := FeatureCollectionAsset(c.watershedAsset).AggregateArrayDistinct("layer")

	result, err := c.ComputeValue(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("list watersheds: %w", err)
	}

	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, fmt.Errorf("decode watershed names: %w", err)
	}

	sort.Strings(names)

	c.logger.WithField("count", len(names)).Debug("Fetched watershed names")
	return names, nil
}

// WatershedGeometry builds a server-side reference to the named
// watershed's geometry. The geometry itself never leaves the platform.
func (c *Client) WatershedGeometry(name string) Expression {
	return FeatureCollectionAsset(c.watershedAsset).
		FilterEq("layer", name).
		First().
		Geometry()
}

// PointBuffer builds a buffered point geometry expression.
func (c *Client) PointBuffer(lat, lon, bufferM float64) Expression {
	return Point(lon, lat).Buffer(bufferM)
}

// snowCollectionFor returns the date- and bounds-filtered snow image
// collection expression shared by all per-geometry queries.
func (c *Client) snowCollectionFor(geometry Expression, from, to time.Time) Expression {
	return ImageCollection(c.snowCollection).
		FilterDate(from.Format("2006-01-02"), to.Format("2006-01-02")).
		FilterBounds(geometry)
}

// CollectionSize returns the number of images in the filtered snow
// collection for the geometry and date range.
func (c *Client) CollectionSize(ctx context.Context, geometry Expression, from, to time.Time) (int, error) {
	result, err := c.ComputeValue(ctx, c.snowCollectionFor(geometry, from, to).Size())
	if err != nil {
		return 0, fmt.Errorf("collection size: %w", err)
	}

	var size int
	if err := json.Unmarshal(result, &size); err != nil {
		return 0, fmt.Errorf("decode collection size: %w", err)
	}
	return size, nil
}

// SnowSeries computes the per-image snow metrics over a geometry and
// returns the resulting feature collection.
func (c *Client) SnowSeries(ctx context.Context, geometry Expression, from, to time.Time, opts SnowMetricsOptions) (*FeatureCollection, error) {
	expr := c.snowCollectionFor(geometry, from, to).MapSnowMetrics(geometry, opts)

	result, err := c.ComputeValue(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("snow series: %w", err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(result, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"features": len(fc.Features),
		"from":     from.Format("2006-01-02"),
		"to":       to.Format("2006-01-02"),
	}).Debug("Fetched snow series")

	return &fc, nil
}

// CompositeFrame is one monthly animation frame: the month label and
// the mean snow-covered fraction of the geometry in that month.
type CompositeFrame struct {
	Month       string  `json:"month"` // YYYY-MM
	SnowPercent float64 `json:"snow_percent"`
}

// MonthlyComposites computes up to maxFrames monthly mean-composite
// snow fractions, one query per month as the original pipeline did.
func (c *Client) MonthlyComposites(ctx context.Context, geometry Expression, from, to time.Time, maxFrames int) ([]CompositeFrame, error) {
	var frames []CompositeFrame

	monthStart := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for len(frames) < maxFrames && !monthStart.After(to) {
		monthEnd := monthStart.AddDate(0, 1, -1)

		expr := c.snowCollectionFor(geometry, monthStart, monthEnd).
			MeanCompositeSnowFraction(geometry)

		result, err := c.ComputeValue(ctx, expr)
		if err != nil {
			return frames, fmt.Errorf("monthly composite %s: %w", monthStart.Format("2006-01"), err)
		}

		// Null fraction means no images that month; skip the frame.
		var fraction *float64
		if err := json.Unmarshal(result, &fraction); err != nil {
			return frames, fmt.Errorf("decode composite fraction: %w", err)
		}
		if fraction != nil {
			frames = append(frames, CompositeFrame{
				Month:       monthStart.Format("2006-01"),
				SnowPercent: *fraction * 100,
			})
		}

		monthStart = monthStart.AddDate(0, 1, 0)
	}

	c.logger.WithField("frames", len(frames)).Debug("Computed monthly composites")
	return frames, nil
}
