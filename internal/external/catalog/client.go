// Package catalog scrapes dataset metadata from the public Earth
// Engine data catalog pages. Dataset pages are plain HTML; there is no
// metadata API for the public catalog.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

// Dataset is the scraped metadata of one catalog entry.
type Dataset struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Provider     string    `json:"provider"`
	Availability string    `json:"availability"`
	Bands        []Band    `json:"bands,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Band is one band row of the dataset page.
type Band struct {
	Name        string `json:"name"`
	Units       string `json:"units,omitempty"`
	Description string `json:"description"`
}

// Client fetches and parses catalog pages. All catalog access goes
// through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new catalog client.
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "catalog"),
		baseURL:    strings.TrimRight(cfg.Catalog.BaseURL, "/"),
	}
}

// FetchDataset downloads and parses one dataset page. The id uses the
// catalog's underscore form, e.g. MODIS_061_MOD10A1.
func (c *Client) FetchDataset(ctx context.Context, id string) (*Dataset, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, id)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("dataset not found: %s", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	ds, err := parseDatasetHTML(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse dataset page: %w", err)
	}
	ds.ID = id
	ds.FetchedAt = time.Now().UTC()

	c.logger.WithFields(map[string]interface{}{
		"dataset": id,
		"bands":   len(ds.Bands),
	}).Debug("Fetched dataset metadata")
	return ds, nil
}

// parseDatasetHTML extracts the metadata blocks from a dataset page.
func parseDatasetHTML(html string) (*Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Title:       strings.TrimSpace(doc.Find("h1.devsite-page-title").First().Text()),
		Description: strings.TrimSpace(doc.Find("div.ee-description p").First().Text()),
	}
	if ds.Title == "" {
		return nil, fmt.Errorf("page has no title")
	}

	// Definition list: Dataset Availability / Dataset Provider
	doc.Find("dl dt").Each(func(i int, dt *goquery.Selection) {
		label := strings.TrimSpace(dt.Text())
		value := strings.TrimSpace(dt.NextFiltered("dd").Text())
		switch {
		case strings.Contains(label, "Availability"):
			ds.Availability = value
		case strings.Contains(label, "Provider"):
			ds.Provider = value
		}
	})

	// Band table: name | units | description
	doc.Find("table.eecat tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		if name == "" {
			return
		}
		ds.Bands = append(ds.Bands, Band{
			Name:        name,
			Units:       strings.TrimSpace(cells.Eq(1).Text()),
			Description: strings.TrimSpace(cells.Eq(2).Text()),
		})
	})

	doc.Find(".ee-tag").Each(func(i int, tag *goquery.Selection) {
		if t := strings.TrimSpace(tag.Text()); t != "" {
			ds.Tags = append(ds.Tags, t)
		}
	})

	return ds, nil
}
