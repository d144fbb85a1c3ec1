package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachesWithinMargin(t *testing.T) {
	exchanges := 0
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		exchanges++
		return "bearer-1", 30 * time.Minute, nil
	}, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	value, ok := c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "bearer-1", value)

	value, ok = c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "bearer-1", value)
	assert.Equal(t, 1, exchanges, "a valid cached token makes no upstream call")
}

func TestGetRefreshesAfterMarginElapses(t *testing.T) {
	exchanges := 0
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		exchanges++
		return "bearer", 30 * time.Minute, nil
	}, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	_, ok := c.Get(context.Background())
	require.True(t, ok)

	// Upstream lifetime is 30m but the cache honors 29m.
	now = now.Add(29*time.Minute - time.Second)
	_, ok = c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, exchanges)

	now = now.Add(2 * time.Second)
	_, ok = c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, exchanges, "exactly one refresh after the margin elapses")
}

func TestGetAbsentWhenNotConfigured(t *testing.T) {
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		return "", 0, ErrNotConfigured
	}, time.Minute)

	value, ok := c.Get(context.Background())
	assert.False(t, ok, "missing credentials mean disabled, not an error")
	assert.Empty(t, value)
}

func TestGetAbsentOnExchangeFailure(t *testing.T) {
	calls := 0
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		calls++
		if calls == 1 {
			return "", 0, errors.New("upstream 503")
		}
		return "bearer", 30 * time.Minute, nil
	}, time.Minute)

	_, ok := c.Get(context.Background())
	assert.False(t, ok, "acquisition failures degrade silently")

	// A later call recovers.
	value, ok := c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "bearer", value)
}

func TestGetSurvivesTinyLifetime(t *testing.T) {
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		return "bearer", 30 * time.Second, nil
	}, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	// Lifetime below the margin still yields a usable token.
	_, ok := c.Get(context.Background())
	assert.True(t, ok)
}

func TestReset(t *testing.T) {
	exchanges := 0
	c := NewCache(func(ctx context.Context) (string, time.Duration, error) {
		exchanges++
		return "bearer", 30 * time.Minute, nil
	}, time.Minute)

	_, ok := c.Get(context.Background())
	require.True(t, ok)

	c.Reset()

	_, ok = c.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, exchanges)
}
