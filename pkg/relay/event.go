package relay

import (
	"encoding/json"

	"hypedigitaly/claude-relay/pkg/sse"
)

// Event is a classified upstream event.
type Event struct {
	Kind Kind

	// Type is the type name as received. It differs from Kind.String() only
	// for KindUnknown.
	Type string

	// Data is the JSON payload exactly as received.
	Data string

	// Error is set for KindError.
	Error *ErrorPayload
}

// ErrorPayload is the body of an upstream error event.
type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// envelope holds the fields needed to classify an event. The remaining
// payload is never decoded; it is forwarded verbatim.
type envelope struct {
	Type  string          `json:"type"`
	Delta json.RawMessage `json:"delta"`
	Error *ErrorPayload   `json:"error"`
}

// Classify decodes the payload of ev and assigns its Kind. The payload type
// field is authoritative; the SSE event name is used only when the payload
// has none. Payloads that are not JSON objects, or content deltas without a
// delta, are reported as *sse.DecodeError.
func Classify(ev sse.Event) (Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(ev.Data), &env); err != nil {
		return Event{}, sse.NewDecodeError(ev.Data, "invalid JSON payload", err)
	}

	name := env.Type
	if name == "" {
		name = ev.Type
	}
	if name == "" {
		return Event{}, sse.NewDecodeError(ev.Data, "event has no type", nil)
	}

	out := Event{Kind: ParseKind(name), Type: name, Data: ev.Data}

	switch out.Kind {
	case KindContentBlockDelta:
		if len(env.Delta) == 0 || string(env.Delta) == "null" {
			return Event{}, sse.NewDecodeError(ev.Data, "content delta without delta", nil)
		}
	case KindError:
		out.Error = env.Error
		if out.Error == nil {
			out.Error = &ErrorPayload{Type: "unknown_error", Message: "upstream reported an error"}
		}
	}

	return out, nil
}
