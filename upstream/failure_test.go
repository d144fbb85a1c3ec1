package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResponse implements Response for classifier tests.
type fakeResponse struct {
	status  int
	headers map[string]string
	body    string
}

func (r *fakeResponse) StatusCode() int { return r.status }

func (r *fakeResponse) Header(name string) string { return r.headers[name] }

func (r *fakeResponse) Decode(v any) error { return json.Unmarshal([]byte(r.body), v) }

func (r *fakeResponse) Text() string { return r.body }

func TestClassifyFailure(t *testing.T) {
	retryable := DefaultRetryableStatuses()

	tests := []struct {
		name          string
		resp          *fakeResponse
		wantRetryable bool
		wantMessage   string
	}{
		{
			name:          "message field from body",
			resp:          &fakeResponse{status: 400, body: `{"message":"missing destination parameter"}`},
			wantRetryable: false,
			wantMessage:   "missing destination parameter",
		},
		{
			name:          "error field from body",
			resp:          &fakeResponse{status: 422, body: `{"error":"coordinates out of range"}`},
			wantRetryable: false,
			wantMessage:   "coordinates out of range",
		},
		{
			name:          "markup message rejected",
			resp:          &fakeResponse{status: 502, body: `{"message":"<html><body>Bad Gateway</body></html>"}`},
			wantRetryable: true,
			wantMessage:   "the service is temporarily unavailable",
		},
		{
			name:          "short message rejected",
			resp:          &fakeResponse{status: 404, body: `{"message":"nope"}`},
			wantRetryable: false,
			wantMessage:   "the requested resource was not found",
		},
		{
			name:          "undecodable body falls back to raw text",
			resp:          &fakeResponse{status: 503, body: "upstream maintenance window in progress"},
			wantRetryable: true,
			wantMessage:   "upstream maintenance window in progress",
		},
		{
			name:          "markup body falls back to table",
			resp:          &fakeResponse{status: 502, body: "<html>Bad Gateway</html>"},
			wantRetryable: true,
			wantMessage:   "the service is temporarily unavailable",
		},
		{
			name:          "unlisted status uses templated fallback",
			resp:          &fakeResponse{status: 418, body: ""},
			wantRetryable: false,
			wantMessage:   "the service returned an unexpected error (status 418)",
		},
		{
			name:          "429 is retryable by default",
			resp:          &fakeResponse{status: 429, body: "{}"},
			wantRetryable: true,
			wantMessage:   "the service is rate limited, try again shortly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classifyFailure(tt.resp, retryable)
			require.NotNil(t, f)
			assert.Equal(t, tt.resp.status, f.StatusCode)
			assert.Equal(t, tt.wantRetryable, f.Retryable)
			assert.Equal(t, tt.wantMessage, f.Message)
			assert.NotContains(t, f.Message, "<")
		})
	}
}

func TestClassifyFailureRateLimitReset(t *testing.T) {
	headerReset := time.Now().Add(90 * time.Second).Unix()
	bodyReset := time.Now().Add(300 * time.Second).Unix()

	t.Run("header preferred over body", func(t *testing.T) {
		resp := &fakeResponse{
			status:  429,
			headers: map[string]string{"RateLimit-Reset": fmt.Sprintf("%d", headerReset)},
			body:    fmt.Sprintf(`{"resetAt":%d}`, bodyReset),
		}
		f := classifyFailure(resp, DefaultRetryableStatuses())
		assert.Equal(t, time.Unix(headerReset, 0), f.RateLimitResetAt)
	})

	t.Run("body used when header absent", func(t *testing.T) {
		resp := &fakeResponse{
			status: 429,
			body:   fmt.Sprintf(`{"resetAt":%d}`, bodyReset),
		}
		f := classifyFailure(resp, DefaultRetryableStatuses())
		assert.Equal(t, time.Unix(bodyReset, 0), f.RateLimitResetAt)
	})

	t.Run("unknown when neither present", func(t *testing.T) {
		resp := &fakeResponse{status: 429, body: "{}"}
		f := classifyFailure(resp, DefaultRetryableStatuses())
		assert.True(t, f.RateLimitResetAt.IsZero())
	})
}

func TestClassifyFailureCustomRetryableSet(t *testing.T) {
	resp := &fakeResponse{status: 500, body: "{}"}

	f := classifyFailure(resp, DefaultRetryableStatuses())
	assert.False(t, f.Retryable)

	f = classifyFailure(resp, map[int]struct{}{500: {}})
	assert.True(t, f.Retryable)
}

func TestTransportFailure(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		f := transportFailure(timeoutError{})
		assert.Equal(t, 0, f.StatusCode)
		assert.True(t, f.Retryable)
		assert.Equal(t, "the service took too long to respond", f.Message)
	})

	t.Run("connectivity", func(t *testing.T) {
		f := transportFailure(errors.New("dial tcp: connection refused"))
		assert.Equal(t, 0, f.StatusCode)
		assert.True(t, f.Retryable)
		assert.Equal(t, "the service could not be reached", f.Message)
	})
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestAsFailure(t *testing.T) {
	inner := &Failure{StatusCode: 503, Retryable: true, Message: "the service is temporarily unavailable"}
	wrapped := fmt.Errorf("fetching forecast: %w", inner)

	f, ok := AsFailure(wrapped)
	require.True(t, ok)
	assert.Equal(t, 503, f.StatusCode)

	_, ok = AsFailure(errors.New("plain"))
	assert.False(t, ok)
}

func TestFailureError(t *testing.T) {
	f := &Failure{StatusCode: 404, Message: "the requested resource was not found"}
	assert.Equal(t, "upstream error (status 404): the requested resource was not found", f.Error())

	f = &Failure{Retryable: true, Message: "the service could not be reached"}
	assert.Equal(t, "the service could not be reached", f.Error())
}
