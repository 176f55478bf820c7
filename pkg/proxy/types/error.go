package types

// ErrorResponse is the JSON body of every response that fails before a
// stream is committed.
type ErrorResponse struct {
	// Error is a short, stable description.
	Error string `json:"error"`

	// Details carries the underlying cause when it is safe to show.
	Details string `json:"details,omitempty"`
}

// Error messages used across handlers.
const (
	MessageInvalidRequest   = "Invalid request"
	MessageUpstreamFailed   = "Failed to process request"
	MessageUpstreamTimeout  = "Upstream request timed out"
	MessageMethodNotAllowed = "Method not allowed"
	MessageNotFound         = "Not found"
	MessageInternal         = "Internal server error"
)

// NewErrorResponse creates an error response.
func NewErrorResponse(message, details string) *ErrorResponse {
	return &ErrorResponse{Error: message, Details: details}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(details string) *ErrorResponse {
	return NewErrorResponse(MessageInvalidRequest, details)
}

// NewBadGatewayError creates an error response for upstream failures (502).
func NewBadGatewayError(details string) *ErrorResponse {
	return NewErrorResponse(MessageUpstreamFailed, details)
}

// NewGatewayTimeoutError creates an error response for upstream timeouts (504).
func NewGatewayTimeoutError(details string) *ErrorResponse {
	return NewErrorResponse(MessageUpstreamTimeout, details)
}

// NewServerError creates an error response for internal errors (500).
func NewServerError() *ErrorResponse {
	return NewErrorResponse(MessageInternal, "")
}
