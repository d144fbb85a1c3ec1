package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Failure is the single error type surfaced by the executor. StatusCode is 0
// for transport-level failures (timeout, connectivity). Message is always
// safe to show to an end user: it never carries raw upstream markup.
type Failure struct {
	StatusCode       int
	Retryable        bool
	Message          string
	RateLimitResetAt time.Time
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.StatusCode == 0 {
		return f.Message
	}
	return fmt.Sprintf("upstream error (status %d): %s", f.StatusCode, f.Message)
}

// AsFailure recovers the typed failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// RateLimitInfo carries quota telemetry extracted from a response.
// Remaining is -1 when the upstream did not report it.
type RateLimitInfo struct {
	Remaining int
	ResetAt   time.Time
}

// statusMessages holds end-user-safe fallbacks per status code.
var statusMessages = map[int]string{
	400: "the request sent to the service was invalid",
	401: "the service requires authentication",
	403: "access to the service was denied",
	404: "the requested resource was not found",
	422: "the service could not process the input",
	429: "the service is rate limited, try again shortly",
	500: "the service is temporarily unavailable",
	502: "the service is temporarily unavailable",
	503: "the service is temporarily unavailable",
	504: "the service timed out",
}

func fallbackMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("the service returned an unexpected error (status %d)", status)
}

// usableMessage rejects candidate messages that look like markup or are too
// short to mean anything to a user.
func usableMessage(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= 5 {
		return false
	}
	return !strings.HasPrefix(s, "<")
}

// classifyFailure turns a non-success response into exactly one Failure.
// The human message is taken from the decoded body's "message" or "error"
// field, then the raw body text, then the static table. The rate-limit reset
// is taken from the header before the body.
func classifyFailure(resp Response, retryable map[int]struct{}) *Failure {
	status := resp.StatusCode()
	f := &Failure{StatusCode: status}
	_, f.Retryable = retryable[status]

	var body map[string]any
	decoded := resp.Decode(&body) == nil

	if reset := headerResetAt(resp); !reset.IsZero() {
		f.RateLimitResetAt = reset
	} else if decoded {
		f.RateLimitResetAt = bodyResetAt(body)
	}

	if decoded {
		for _, field := range []string{"message", "error"} {
			if s, ok := body[field].(string); ok && usableMessage(s) {
				f.Message = strings.TrimSpace(s)
				break
			}
		}
	} else if text := strings.TrimSpace(resp.Text()); usableMessage(text) {
		f.Message = text
	}

	if f.Message == "" {
		f.Message = fallbackMessage(status)
	}
	return f
}

// decodeFailure covers a success response whose body cannot be decoded as
// the expected payload. A malformed success is not a transient condition.
func decodeFailure(status int) *Failure {
	return &Failure{
		StatusCode: status,
		Message:    "the service returned an unreadable response",
	}
}

// transportFailure classifies an error from the HTTP client itself.
func transportFailure(err error) *Failure {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Failure{Retryable: true, Message: "the service took too long to respond"}
	}
	return &Failure{Retryable: true, Message: "the service could not be reached"}
}

func canceledFailure() *Failure {
	return &Failure{Message: "the request was canceled"}
}

// rateLimitResetHeaders are checked in order; the first parseable one wins.
var rateLimitResetHeaders = []string{"RateLimit-Reset", "X-RateLimit-Reset"}

var rateLimitRemainingHeaders = []string{"RateLimit-Remaining", "X-RateLimit-Remaining"}

func headerResetAt(resp Response) time.Time {
	for _, name := range rateLimitResetHeaders {
		if raw := resp.Header(name); raw != "" {
			if secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
				return time.Unix(secs, 0)
			}
		}
	}
	return time.Time{}
}

func bodyResetAt(body map[string]any) time.Time {
	if secs, ok := body["resetAt"].(float64); ok {
		return time.Unix(int64(secs), 0)
	}
	return time.Time{}
}

// extractRateLimit pulls quota telemetry from a response. It reports ok only
// when the upstream exposed at least one rate-limit signal, so observers are
// not invoked with empty info on every call.
func extractRateLimit(resp Response) (RateLimitInfo, bool) {
	info := RateLimitInfo{Remaining: -1}

	for _, name := range rateLimitRemainingHeaders {
		if raw := resp.Header(name); raw != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				info.Remaining = n
				break
			}
		}
	}
	info.ResetAt = headerResetAt(resp)

	return info, info.Remaining >= 0 || !info.ResetAt.IsZero()
}
