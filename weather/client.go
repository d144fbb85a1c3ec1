// Package weather fetches daily forecasts from the Open-Meteo API.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasadnitish/StrollerScout-sub001/cache"
	"github.com/prasadnitish/StrollerScout-sub001/upstream"
)

const defaultBaseURL = "https://api.open-meteo.com"

const (
	// DefaultDays is the forecast length when the caller does not pick one.
	DefaultDays = 5
	maxDays     = 16

	defaultCacheTTL  = 30 * time.Minute
	defaultCacheSize = 256
)

// Client is a forecast API client.
type Client struct {
	baseURL string
	exec    *upstream.Executor
	cache   *cache.Cache[string, Forecast]
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
		c.cache = cache.New[string, Forecast](ttl, maxEntries)
	}
}

// NewClient creates a forecast client.
func NewClient(exec *upstream.Executor, logger zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		exec:    exec,
		cache:   cache.New[string, Forecast](defaultCacheTTL, defaultCacheSize),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Forecast returns a daily forecast for the coordinates. The cache key uses
// truncated coordinates, so lookups within roughly a kilometer share an
// entry.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (*Forecast, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > maxDays {
		days = maxDays
	}

	key := fmt.Sprintf("%s|%d", cache.CoordKey(lat, lon), days)
	if fc, ok := c.cache.Get(key); ok {
		c.logger.Debug().Str("key", key).Msg("forecast cache hit")
		return &fc, nil
	}

	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max"},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(days)},
	}

	var resp forecastResponse
	req := &upstream.Request{URL: c.baseURL + "/v1/forecast", Query: params}
	if err := c.exec.Do(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	fc := Forecast{
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
	}
	for i, date := range resp.Daily.Time {
		day := Day{Date: date}
		if i < len(resp.Daily.WeatherCode) {
			day.Code = resp.Daily.WeatherCode[i]
			day.Description = describeCode(day.Code)
		}
		if i < len(resp.Daily.TempMax) {
			day.TempMax = resp.Daily.TempMax[i]
		}
		if i < len(resp.Daily.TempMin) {
			day.TempMin = resp.Daily.TempMin[i]
		}
		if i < len(resp.Daily.PrecipMaxProb) {
			day.PrecipChance = resp.Daily.PrecipMaxProb[i]
		}
		fc.Days = append(fc.Days, day)
	}

	c.cache.Set(key, fc)

	c.logger.Debug().
		Str("key", key).
		Int("days", len(fc.Days)).
		Msg("fetched forecast")

	return &fc, nil
}
