package types

import (
	"fmt"
	"strings"
)

// ChatRequest is the body of a chat request as sent by the client. Field
// names follow the browser extension that calls the relay, hence the mix of
// camelCase and snake_case.
type ChatRequest struct {
	// Model is the upstream model ID. Optional.
	Model string `json:"model,omitempty"`

	// MaxTokens caps the generated tokens. Optional, must be > 0 when set.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Optional, must be within [0, 1].
	Temperature *float64 `json:"temperature,omitempty"`

	// SystemPrompt is sent as a cached system block. Optional; an explicit
	// empty string sends no system prompt.
	SystemPrompt *string `json:"systemPrompt,omitempty"`

	// UserData is the single user message. Required.
	UserData string `json:"userData"`
}

// ValidationError describes an invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks required fields and value ranges. It does not apply
// defaults.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.UserData) == "" {
		return &ValidationError{Field: "userData", Message: "is required"}
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return &ValidationError{Field: "max_tokens", Message: "must be greater than 0"}
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 1) {
		return &ValidationError{Field: "temperature", Message: "must be between 0 and 1"}
	}
	return nil
}

// Defaults holds the values used for omitted optional fields.
type Defaults struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// WithDefaults returns a copy of r with every omitted optional field set
// from d. The returned request has no nil pointers.
func (r ChatRequest) WithDefaults(d Defaults) ChatRequest {
	if r.Model == "" {
		r.Model = d.Model
	}
	if r.MaxTokens == nil {
		n := d.MaxTokens
		r.MaxTokens = &n
	}
	if r.Temperature == nil {
		t := d.Temperature
		r.Temperature = &t
	}
	if r.SystemPrompt == nil {
		s := d.SystemPrompt
		r.SystemPrompt = &s
	}
	return r
}
