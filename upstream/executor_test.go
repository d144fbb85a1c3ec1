package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(opts ...Option) *Executor {
	base := []Option{WithBaseDelay(time.Millisecond)}
	return NewExecutor(zerolog.Nop(), append(base, opts...)...)
}

func TestDoSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"city":"Lisbon"}`)
	}))
	defer server.Close()

	var out struct {
		City string `json:"city"`
	}
	err := newTestExecutor().Do(context.Background(), &Request{URL: server.URL}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", out.City)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDoZeroBaseDelay(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	// A zero delay is valid configuration and means immediate retries.
	exec := NewExecutor(zerolog.Nop(), WithBaseDelay(0), WithMaxRetries(2))
	var out map[string]any
	err := exec.Do(context.Background(), &Request{URL: server.URL}, &out)

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDoPreservesCallerAcceptHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	req := &Request{
		URL:    server.URL,
		Header: http.Header{"Accept": []string{"application/geo+json"}},
	}
	require.NoError(t, newTestExecutor().Do(context.Background(), req, nil))
}

func TestDoMalformedSuccessBody(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, "not json at all")
	}))
	defer server.Close()

	var out map[string]any
	err := newTestExecutor(WithMaxRetries(2)).Do(context.Background(), &Request{URL: server.URL}, &out)

	f, ok := AsFailure(err)
	require.True(t, ok, "decode errors must surface as a typed failure")
	assert.False(t, f.Retryable, "a malformed success body is not transient")
	assert.Equal(t, http.StatusOK, f.StatusCode)
	// Never retried.
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDoMarkupErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><body><h1>502 Bad Gateway</h1></body></html>")
	}))
	defer server.Close()

	err := newTestExecutor(WithMaxRetries(0)).Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, f.StatusCode)
	assert.True(t, f.Retryable)
	assert.NotContains(t, f.Message, "<html>")
}

func TestDoRateLimitResetHeader(t *testing.T) {
	reset := time.Now().Add(time.Minute).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("RateLimit-Reset", fmt.Sprintf("%d", reset))
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	err := newTestExecutor(WithMaxRetries(0)).Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, f.StatusCode)
	assert.Equal(t, time.Unix(reset, 0), f.RateLimitResetAt)
}

func TestDoClientErrorSingleAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"missing destination parameter"}`)
	}))
	defer server.Close()

	err := newTestExecutor(WithMaxRetries(5)).Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.False(t, f.Retryable)
	assert.Equal(t, "missing destination parameter", f.Message)
	assert.Equal(t, int32(1), attempts.Load(), "non-retryable failures short-circuit")
}

func TestDoRecoversAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	var out map[string]any
	err := newTestExecutor(WithMaxRetries(2)).Do(context.Background(), &Request{URL: server.URL}, &out)

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, `{"message":"gateway worker %d crashed"}`, attempts.Load())
	}))
	defer server.Close()

	err := newTestExecutor(WithMaxRetries(2)).Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, int32(3), attempts.Load(), "maxRetries=2 means 3 attempts total")
	// The surfaced failure is the last attempt's, not the first.
	assert.Equal(t, "gateway worker 3 crashed", f.Message)
}

func TestDoRetryHook(t *testing.T) {
	var hookAttempts []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exec := newTestExecutor(
		WithMaxRetries(2),
		WithRetryHook(func(attempt int, failure *Failure) {
			assert.True(t, failure.Retryable)
			hookAttempts = append(hookAttempts, attempt)
		}),
	)
	err := exec.Do(context.Background(), &Request{URL: server.URL}, nil)

	require.Error(t, err)
	// Invoked before each sleep, never after the final attempt.
	assert.Equal(t, []int{1, 2}, hookAttempts)
}

func TestDoRateLimitHookOnSuccess(t *testing.T) {
	var got []RateLimitInfo
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "3")
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	exec := newTestExecutor(WithRateLimitHook(func(info RateLimitInfo) {
		got = append(got, info)
	}))
	var out map[string]any
	require.NoError(t, exec.Do(context.Background(), &Request{URL: server.URL}, &out))

	require.Len(t, got, 1, "rate-limit telemetry fires on the success path too")
	assert.Equal(t, 3, got[0].Remaining)
}

func TestDoAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	exec := newTestExecutor(WithMaxRetries(0), WithAttemptTimeout(20*time.Millisecond))
	err := exec.Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 0, f.StatusCode)
	assert.True(t, f.Retryable)
	assert.Equal(t, "the service took too long to respond", f.Message)
}

func TestDoTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	err := newTestExecutor(WithMaxRetries(0)).Do(context.Background(), &Request{URL: server.URL}, nil)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 0, f.StatusCode)
	assert.True(t, f.Retryable)
}

// The backoff is base * 2^attempt: 1s, 2s, 4s for the default base. Not the
// cumulative 1s/3s/7s series this progression is sometimes misread as.
func TestBackoffProgression(t *testing.T) {
	b := retry.NewExponential(time.Second)

	for _, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		got, stop := b.Next()
		require.False(t, stop)
		assert.Equal(t, want, got)
	}
}
