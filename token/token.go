// Package token caches a single renewable bearer credential with a safety
// margin, shared across all calls needing authentication against one
// upstream.
package token

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotConfigured is returned by an ExchangeFunc when the credentials it
// needs are absent. Callers treat an absent token as "this integration is
// disabled", not as an error.
var ErrNotConfigured = errors.New("credentials not configured")

// DefaultMargin shortens a credential's cached lifetime below its true
// expiry, so a cached token is never presented after the upstream considers
// it dead. With the typical 30 minute upstream lifetime, tokens are cached
// for 29.
const DefaultMargin = time.Minute

// Token is a credential with the expiry the cache will honor.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// ExchangeFunc performs one credential exchange, returning the bearer value
// and the upstream-declared lifetime.
type ExchangeFunc func(ctx context.Context) (value string, lifetime time.Duration, err error)

// Cache owns one renewable token. Concurrent callers seeing an expired
// token may each trigger a refresh; the exchange deliberately runs outside
// the lock, so redundant refreshes are possible but never corrupting. That
// is a simplicity/latency trade-off, acceptable while exchanges stay cheap
// and idempotent upstream.
type Cache struct {
	mu       sync.Mutex
	exchange ExchangeFunc
	margin   time.Duration
	current  Token
	now      func() time.Time
}

// NewCache creates a credential cache around the given exchange.
func NewCache(exchange ExchangeFunc, margin time.Duration) *Cache {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Cache{
		exchange: exchange,
		margin:   margin,
		now:      time.Now,
	}
}

// Get returns a valid bearer value. Absent (false) means the integration is
// disabled or the exchange failed; token acquisition never surfaces an
// error to callers.
func (c *Cache) Get(ctx context.Context) (string, bool) {
	c.mu.Lock()
	current := c.current
	now := c.now()
	c.mu.Unlock()

	if current.Value != "" && now.Before(current.ExpiresAt) {
		return current.Value, true
	}

	value, lifetime, err := c.exchange(ctx)
	if err != nil {
		return "", false
	}

	ttl := lifetime - c.margin
	if ttl <= 0 {
		ttl = lifetime
	}

	c.mu.Lock()
	c.current = Token{Value: value, ExpiresAt: now.Add(ttl)}
	c.mu.Unlock()

	return value, true
}

// Reset drops the cached token. The next Get triggers a fresh exchange.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.current = Token{}
	c.mu.Unlock()
}
