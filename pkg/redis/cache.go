package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities on top of the Redis client.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	// Store in cache; a failed write is not fatal
	_ = c.Set(ctx, key, value, ttl)

	// Unmarshal into dest
	data, _ := json.Marshal(value)
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort    = 1 * time.Minute  // transient lookups
	TTLAnalysis = 1 * time.Hour    // completed analyses and watershed list
	TTLDaily    = 24 * time.Hour   // catalog metadata
)

// Common cache key generators

// WatershedListKey is the cache key for the watershed dropdown source.
func WatershedListKey() string {
	return "watersheds:list"
}

// WatershedAnalysisKey identifies one watershed analysis by its inputs.
func WatershedAnalysisKey(watershed, from, to string) string {
	return fmt.Sprintf("analysis:watershed:%s:%s:%s", watershed, from, to)
}

// PointAnalysisKey identifies one point analysis by its inputs.
func PointAnalysisKey(lat, lon, bufferM float64, from, to string) string {
	return fmt.Sprintf("analysis:point:%.4f:%.4f:%.0f:%s:%s", lat, lon, bufferM, from, to)
}

// DatasetKey is the cache key for catalog metadata of a dataset.
func DatasetKey(id string) string {
	return fmt.Sprintf("catalog:dataset:%s", id)
}
