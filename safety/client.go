// Package safety pulls neighborhood safety ratings from an OAuth-protected
// upstream. Safety data is supplemental: every failure degrades to an empty
// result so it can never block the primary planning workflow.
package safety

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasadnitish/StrollerScout-sub001/cache"
	"github.com/prasadnitish/StrollerScout-sub001/token"
	"github.com/prasadnitish/StrollerScout-sub001/upstream"
)

const (
	defaultCacheTTL  = 6 * time.Hour
	defaultCacheSize = 256

	// fallbackTokenLifetime applies when the exchange omits expires_in.
	fallbackTokenLifetime = 30 * time.Minute
)

// Client is a safety ratings API client.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	exec         *upstream.Executor
	tokens       *token.Cache
	cache        *cache.Cache[string, []Rating]
	logger       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache replaces the default content cache settings.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return func(c *Client) {
		c.cache = cache.New[string, []Rating](ttl, maxEntries)
	}
}

// NewClient creates a safety client. Empty credentials are not an error;
// they mark the integration as disabled.
func NewClient(baseURL, clientID, clientSecret string, exec *upstream.Executor, logger zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		exec:         exec,
		cache:        cache.New[string, []Rating](defaultCacheTTL, defaultCacheSize),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.tokens = token.NewCache(client.exchangeToken, token.DefaultMargin)
	return client
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *Client) exchangeToken(ctx context.Context) (string, time.Duration, error) {
	if !c.Enabled() {
		return "", 0, token.ErrNotConfigured
	}

	req := &upstream.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/v1/oauth2/token",
		Form: url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {c.clientID},
			"client_secret": {c.clientSecret},
		},
	}

	var resp tokenResponse
	if err := c.exec.Do(ctx, req, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("safety token exchange failed")
		return "", 0, err
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = fallbackTokenLifetime
	}
	return resp.AccessToken, lifetime, nil
}

// Ratings returns safety ratings near the coordinates. It never returns an
// error: an absent token or an exhausted upstream yields an empty slice and
// a warning log, nothing more.
func (c *Client) Ratings(ctx context.Context, lat, lon float64) []Rating {
	if !c.Enabled() {
		return nil
	}

	key := cache.CoordKey(lat, lon)
	if ratings, ok := c.cache.Get(key); ok {
		c.logger.Debug().Str("key", key).Msg("safety cache hit")
		return ratings
	}

	bearer, ok := c.tokens.Get(ctx)
	if !ok {
		c.logger.Warn().Msg("safety ratings unavailable: no access token")
		return nil
	}

	req := &upstream.Request{
		URL: c.baseURL + "/v1/safety-rated-locations",
		Query: url.Values{
			"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
			"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		},
		Header: http.Header{"Authorization": {"Bearer " + bearer}},
	}

	var resp ratingsResponse
	if err := c.exec.Do(ctx, req, &resp); err != nil {
		event := c.logger.Warn()
		if f, isFailure := upstream.AsFailure(err); isFailure {
			event = event.Int("status", f.StatusCode).Str("reason", f.Message)
		} else {
			event = event.Err(err)
		}
		event.Msg("safety ratings unavailable")
		return nil
	}

	ratings := make([]Rating, 0, len(resp.Data))
	for _, item := range resp.Data {
		ratings = append(ratings, Rating{
			Name:         item.Name,
			Overall:      item.SafetyScores.Overall,
			PhysicalHarm: item.SafetyScores.PhysicalHarm,
			Theft:        item.SafetyScores.Theft,
			Women:        item.SafetyScores.Women,
		})
	}

	c.cache.Set(key, ratings)
	return ratings
}

// ResetCaches clears the content and token caches. Test harness use only;
// it drops cached copies, never the credential source of truth.
func (c *Client) ResetCaches() {
	c.cache.Reset()
	c.tokens.Reset()
}
