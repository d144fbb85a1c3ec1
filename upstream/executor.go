package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Default executor configuration.
const (
	// DefaultMaxRetries allows up to 3 attempts total.
	DefaultMaxRetries = 2
	// DefaultBaseDelay is doubled per attempt: 1s, 2s, 4s.
	DefaultBaseDelay = 1 * time.Second
	// DefaultAttemptTimeout bounds each individual attempt.
	DefaultAttemptTimeout = 30 * time.Second
)

// DefaultRetryableStatuses returns the statuses retried unless overridden.
func DefaultRetryableStatuses() map[int]struct{} {
	return map[int]struct{}{
		http.StatusTooManyRequests:    {},
		http.StatusBadGateway:         {},
		http.StatusServiceUnavailable: {},
		http.StatusGatewayTimeout:     {},
	}
}

// Request describes one logical upstream call. At most one of Form and JSON
// may be set; the body is rebuilt for every attempt.
type Request struct {
	Method string // defaults to GET
	URL    string
	Query  url.Values
	Header http.Header
	Form   url.Values // form-encoded body (credential exchanges)
	JSON   any        // JSON-encoded body
}

func (r *Request) build(ctx context.Context) (*http.Request, error) {
	target := r.URL
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	var contentType string
	switch {
	case len(r.Form) > 0:
		body = strings.NewReader(r.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return req, nil
}

// Option configures an Executor.
type Option func(*options)

type options struct {
	httpClient        *http.Client
	maxRetries        int
	retryableStatuses map[int]struct{}
	baseDelay         time.Duration
	attemptTimeout    time.Duration
	onRetry           func(attempt int, failure *Failure)
	onRateLimit       func(info RateLimitInfo)
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithMaxRetries sets how many retries follow the first attempt.
// Zero means exactly one attempt and no sleeping, ever.
func WithMaxRetries(retries int) Option {
	return func(o *options) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryableStatuses replaces the set of statuses considered transient.
func WithRetryableStatuses(statuses ...int) Option {
	return func(o *options) {
		set := make(map[int]struct{}, len(statuses))
		for _, s := range statuses {
			set[s] = struct{}{}
		}
		o.retryableStatuses = set
	}
}

// WithBaseDelay sets the first backoff delay; each retry doubles it.
func WithBaseDelay(delay time.Duration) Option {
	return func(o *options) {
		if delay >= 0 {
			o.baseDelay = delay
		}
	}
}

// WithAttemptTimeout sets the per-attempt deadline. Expiry cancels only the
// in-flight attempt, not the retry loop.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.attemptTimeout = timeout
		}
	}
}

// WithRetryHook registers an observer invoked before each backoff sleep with
// the 1-based number of the attempt that just failed. Its absence never
// changes control flow.
func WithRetryHook(hook func(attempt int, failure *Failure)) Option {
	return func(o *options) {
		o.onRetry = hook
	}
}

// WithRateLimitHook registers an observer for quota telemetry. It fires on
// success and failure responses alike, so callers can warn before quota
// exhaustion even while calls still succeed.
func WithRateLimitHook(hook func(info RateLimitInfo)) Option {
	return func(o *options) {
		o.onRateLimit = hook
	}
}

// Executor performs one logical upstream request with a per-attempt timeout,
// failure classification and bounded exponential backoff. A non-nil error
// from Do is always a *Failure.
type Executor struct {
	opts   options
	logger zerolog.Logger
}

// NewExecutor creates an executor with the given options.
func NewExecutor(logger zerolog.Logger, opts ...Option) *Executor {
	o := options{
		httpClient:        &http.Client{},
		maxRetries:        DefaultMaxRetries,
		retryableStatuses: DefaultRetryableStatuses(),
		baseDelay:         DefaultBaseDelay,
		attemptTimeout:    DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{opts: o, logger: logger}
}

// Do executes the request, decoding a success body into out when out is
// non-nil. Retryable failures are re-attempted up to the retry budget with
// delays of baseDelay * 2^attempt; the failure surfaced after exhaustion is
// the last attempt's, not the first.
func (e *Executor) Do(ctx context.Context, req *Request, out any) error {
	attempt := -1
	backoff := retry.WithMaxRetries(uint64(e.opts.maxRetries), e.backoff())

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		failure := e.attempt(ctx, req, out)
		if failure == nil {
			return nil
		}

		// Terminal outcomes return the bare failure so no sleep follows.
		if !failure.Retryable || attempt >= e.opts.maxRetries {
			return failure
		}

		if e.opts.onRetry != nil {
			e.opts.onRetry(attempt+1, failure)
		}
		e.logger.Debug().
			Int("attempt", attempt+1).
			Int("status", failure.StatusCode).
			Str("reason", failure.Message).
			Msg("retrying upstream request")

		return retry.RetryableError(failure)
	})
	if err == nil {
		return nil
	}

	if f, ok := AsFailure(err); ok {
		return f
	}
	// Context cancellation during a backoff sleep surfaces here.
	return canceledFailure()
}

// backoff builds the per-retry delay series. NewExponential rejects a zero
// base, so a zero delay maps to immediate retries instead.
func (e *Executor) backoff() retry.Backoff {
	if e.opts.baseDelay == 0 {
		return retry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		})
	}
	return retry.NewExponential(e.opts.baseDelay)
}

// attempt performs a single request under its own deadline and maps every
// outcome to nil or exactly one Failure.
func (e *Executor) attempt(ctx context.Context, req *Request, out any) *Failure {
	ctx, cancel := context.WithTimeout(ctx, e.opts.attemptTimeout)
	defer cancel()

	httpReq, err := req.build(ctx)
	if err != nil {
		return &Failure{Message: "the request could not be constructed"}
	}

	resp, err := e.opts.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return canceledFailure()
		}
		return transportFailure(err)
	}

	buffered, err := newBufferedResponse(resp)
	if err != nil {
		return transportFailure(err)
	}

	if e.opts.onRateLimit != nil {
		if info, ok := extractRateLimit(buffered); ok {
			e.opts.onRateLimit(info)
		}
	}

	if buffered.StatusCode() >= 200 && buffered.StatusCode() < 300 {
		if out == nil {
			return nil
		}
		if err := buffered.Decode(out); err != nil {
			return decodeFailure(buffered.StatusCode())
		}
		return nil
	}

	return classifyFailure(buffered, e.opts.retryableStatuses)
}
