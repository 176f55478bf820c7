package upstream

import (
	"fmt"
	"net/http"
	"time"
)

// StatusError is returned when upstream answers with a non-2xx status.
type StatusError struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Type is the upstream error type (e.g. "authentication_error"), when
	// the body could be parsed.
	Type string

	// Message is the upstream error message, or the raw body when it could
	// not be parsed.
	Message string

	// RetryAfter is the upstream Retry-After hint on 429/529 responses.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("upstream returned status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether upstream rejected the server credential.
func (e *StatusError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit reports whether upstream refused the request for load reasons.
func (e *StatusError) IsRateLimit() bool {
	// 529 is upstream's "overloaded" status.
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == 529
}

// ConnectionError is returned when upstream could not be reached.
type ConnectionError struct {
	URL   string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("upstream connection to %s failed: %v", e.URL, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when a phase of the upstream call exceeds its
// limit.
type TimeoutError struct {
	// Phase names the limit that fired: "connect", "response_header" or "idle".
	Phase string

	// Timeout is the configured limit.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %s timeout after %s", e.Phase, e.Timeout)
}

// StreamError is returned when an established stream fails, either because
// reading broke or because upstream sent an error event.
type StreamError struct {
	// Type is the upstream error type for error events, empty for read failures.
	Type string

	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("upstream stream error (%s): %s", e.Type, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("upstream stream error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream stream error: %s", e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}
