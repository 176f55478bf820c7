package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event formats one upstream SSE event.
func Event(eventType, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)
}

// TextDelta formats a content_block_delta event carrying text.
func TextDelta(text string) string {
	quoted, _ := json.Marshal(text)
	return Event("content_block_delta",
		fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%s}}`, quoted))
}

// ConversationStream returns a complete, well-formed upstream stream whose
// content deltas carry texts in order.
func ConversationStream(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(Event("message_start", `{"type":"message_start","message":{"id":"msg_test","type":"message","role":"assistant","content":[],"model":"claude-3-5-sonnet-20241022"}}`))
	sb.WriteString(Event("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))
	sb.WriteString(Event("ping", `{"type": "ping"}`))
	for _, t := range texts {
		sb.WriteString(TextDelta(t))
	}
	sb.WriteString(Event("content_block_stop", `{"type":"content_block_stop","index":0}`))
	sb.WriteString(Event("message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`))
	sb.WriteString(Event("message_stop", `{"type":"message_stop"}`))
	return sb.String()
}

// ErrorBody formats an upstream non-2xx error body.
func ErrorBody(errType, message string) string {
	return fmt.Sprintf(`{"type":"error","error":{"type":%q,"message":%q}}`, errType, message)
}

// SplitEvery cuts s into pieces of n bytes.
func SplitEvery(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
