package relay

// Kind is the classification of one upstream event.
type Kind uint8

// Event kinds of the Messages streaming protocol.
const (
	KindUnknown Kind = iota
	KindMessageStart
	KindContentBlockStart
	KindContentBlockDelta
	KindContentBlockStop
	KindMessageDelta
	KindMessageStop
	KindPing
	KindError
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindMessageStart:      "message_start",
	KindContentBlockStart: "content_block_start",
	KindContentBlockDelta: "content_block_delta",
	KindContentBlockStop:  "content_block_stop",
	KindMessageDelta:      "message_delta",
	KindMessageStop:       "message_stop",
	KindPing:              "ping",
	KindError:             "error",
}

// String returns the wire name of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ParseKind maps a wire type name to its Kind. Unrecognized names map to
// KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindUnknown {
			return Kind(k)
		}
	}
	return KindUnknown
}
