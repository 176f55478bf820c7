package relay

import "fmt"

// Scope decides which event kinds reach the client and how they are framed.
type Scope uint8

const (
	// ScopeContentDelta forwards only content deltas, as bare data: frames.
	ScopeContentDelta Scope = iota

	// ScopeAll forwards every kind except pings, each with an event: line.
	ScopeAll
)

// ParseScope maps a configuration value to a Scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "content_delta", "":
		return ScopeContentDelta, nil
	case "all":
		return ScopeAll, nil
	}
	return 0, fmt.Errorf("unknown forward scope %q", s)
}

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "content_delta"
}

// Frame reports whether ev is forwarded and, if so, the event: line to
// precede it (empty for none). Error events are not handled here; the relay
// always terminates on them.
func (s Scope) Frame(ev Event) (eventLine string, forward bool) {
	switch s {
	case ScopeAll:
		if ev.Kind == KindPing {
			return "", false
		}
		return ev.Type, true
	default:
		if ev.Kind == KindContentBlockDelta {
			return "", true
		}
		return "", false
	}
}
