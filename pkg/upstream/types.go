package upstream

// MessagesRequest is the body of POST /v1/messages.
type MessagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	System      []SystemBlock `json:"system,omitempty"`
	Messages    []Message     `json:"messages"`
}

// SystemBlock is one text block of the system prompt.
type SystemBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl marks a block for prompt caching.
type CacheControl struct {
	Type string `json:"type"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessagesRequest builds a single-turn streaming request. The system
// prompt is sent as one cacheable text block.
func NewMessagesRequest(model string, maxTokens int, temperature float64, system, user string) *MessagesRequest {
	req := &MessagesRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      true,
		Messages:    []Message{{Role: "user", Content: user}},
	}
	if system != "" {
		req.System = []SystemBlock{{
			Type:         "text",
			Text:         system,
			CacheControl: &CacheControl{Type: "ephemeral"},
		}}
	}
	return req
}

// apiError is the error body returned with non-2xx responses.
type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
