package upstream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxBodyBytes caps how much of an upstream body is buffered.
const maxBodyBytes = 4 << 20

// Response is the minimal view of a completed upstream HTTP response that
// the failure classifier needs. Any HTTP client can adapt to it.
type Response interface {
	// StatusCode returns the HTTP status code.
	StatusCode() int
	// Header returns the first value for the named header, or "".
	Header(name string) string
	// Decode unmarshals the response body as JSON into v.
	Decode(v any) error
	// Text returns the raw response body as text.
	Text() string
}

// bufferedResponse adapts *http.Response by reading the body exactly once,
// so the classifier can attempt a JSON decode and fall back to raw text.
type bufferedResponse struct {
	status int
	header http.Header
	body   []byte
}

func newBufferedResponse(resp *http.Response) (*bufferedResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &bufferedResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

func (r *bufferedResponse) StatusCode() int {
	return r.status
}

func (r *bufferedResponse) Header(name string) string {
	return r.header.Get(name)
}

func (r *bufferedResponse) Decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.body))
	return dec.Decode(v)
}

func (r *bufferedResponse) Text() string {
	return string(r.body)
}
