package sse

import (
	"errors"
	"fmt"
)

// ErrCommitted is returned when headers are committed a second time.
var ErrCommitted = errors.New("sse: response already committed")

// DecodeError describes an upstream fragment that could not be decoded.
// It is never fatal to a stream: the fragment is dropped and decoding
// continues.
type DecodeError struct {
	// Line is the offending line or event payload, truncated for logging.
	Line string

	// Reason is a short description of the problem.
	Reason string

	// Cause is the underlying error, if any.
	Cause error
}

// maxFragment bounds how much of a bad fragment is kept for logs.
const maxFragment = 256

// NewDecodeError builds a DecodeError, truncating fragment.
func NewDecodeError(fragment, reason string, cause error) *DecodeError {
	if len(fragment) > maxFragment {
		fragment = fragment[:maxFragment] + "..."
	}
	return &DecodeError{Line: fragment, Reason: reason, Cause: cause}
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sse decode: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("sse decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
