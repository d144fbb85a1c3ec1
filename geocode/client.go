// Package geocode resolves place names to coordinates via the Open-Meteo
// geocoding API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasadnitish/StrollerScout-sub001/cache"
	"github.com/prasadnitish/StrollerScout-sub001/upstream"
)

// ErrNotFound indicates the place could not be resolved.
var ErrNotFound = errors.New("place not found")

const defaultBaseURL = "https://geocoding-api.open-meteo.com"

// Geocoded places change rarely; cache results for a day.
const (
	defaultCacheTTL  = 24 * time.Hour
	defaultCacheSize = 128
)

// Client is a geocoding API client.
type Client struct {
	baseURL string
	exec    *upstream.Executor
	cache   *cache.Cache[string, Location]
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCache replaces the default content cache settings.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return func(c *Client) {
		c.cache = cache.New[string, Location](ttl, maxEntries)
	}
}

// NewClient creates a geocoding client.
func NewClient(exec *upstream.Executor, logger zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		exec:    exec,
		cache:   cache.New[string, Location](defaultCacheTTL, defaultCacheSize),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Lookup resolves a place name to its best-matching location.
func (c *Client) Lookup(ctx context.Context, place string) (*Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, fmt.Errorf("place name is required")
	}

	key := strings.ToLower(place)
	if loc, ok := c.cache.Get(key); ok {
		c.logger.Debug().Str("place", place).Msg("geocode cache hit")
		return &loc, nil
	}

	params := url.Values{
		"name":     {place},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}

	var resp searchResponse
	req := &upstream.Request{URL: c.baseURL + "/v1/search", Query: params}
	if err := c.exec.Do(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", place, err)
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("no match for %q: %w", place, ErrNotFound)
	}

	loc := resp.Results[0]
	c.cache.Set(key, loc)

	c.logger.Debug().
		Str("place", place).
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Msg("geocoded place")

	return &loc, nil
}
