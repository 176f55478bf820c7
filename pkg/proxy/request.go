package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/proxy/types"
	"hypedigitaly/claude-relay/pkg/upstream"
)

// RequestIDHeader is the HTTP header for request ID propagation.
const RequestIDHeader = "X-Request-ID"

// RequestError is a client error detected before any upstream call.
type RequestError struct {
	// StatusCode defaults to 400 when zero.
	StatusCode int
	Message    string
	Field      string
}

func (e *RequestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Status returns the HTTP status for the error.
func (e *RequestError) Status() int {
	if e.StatusCode == 0 {
		return http.StatusBadRequest
	}
	return e.StatusCode
}

// ParseChatRequest reads and validates a chat request body. The body is
// limited to cfg.MaxBodyBytes. Defaults from cfg are applied to omitted
// fields, so the returned request has no nil pointers.
func ParseChatRequest(r *http.Request, cfg *config.RelayConfig) (*types.ChatRequest, error) {
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = config.DefaultMaxBodyBytes
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, &RequestError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    fmt.Sprintf("request body exceeds maximum size of %d bytes", limit),
			Field:      "body",
		}
	}
	if len(body) == 0 {
		return nil, &RequestError{Message: "request body is empty", Field: "body"}
	}

	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Field:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			return nil, &RequestError{Message: verr.Message, Field: verr.Field}
		}
		return nil, err
	}

	req = req.WithDefaults(types.Defaults{
		Model:        cfg.DefaultModel,
		MaxTokens:    cfg.DefaultMaxTokens,
		SystemPrompt: cfg.DefaultSystemPrompt,
	})
	return &req, nil
}

// MessagesRequest builds the upstream call for a parsed chat request.
func MessagesRequest(req *types.ChatRequest) *upstream.MessagesRequest {
	return upstream.NewMessagesRequest(
		req.Model,
		*req.MaxTokens,
		*req.Temperature,
		*req.SystemPrompt,
		req.UserData,
	)
}
