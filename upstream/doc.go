// Package upstream is the shared access layer for every external HTTP
// service the application talks to. It classifies transport and HTTP
// failures into a single typed Failure, retries transient ones with bounded
// exponential backoff, and guarantees that upstream flakiness never reaches
// callers as a raw transport or JSON error. Degrading to an empty result is
// the caller's decision; this package's job stops at producing a classified,
// user-safe outcome.
package upstream
