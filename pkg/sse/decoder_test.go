package sse

import (
	"reflect"
	"testing"
)

func decodeAll(t *testing.T, lines []string) ([]Event, []*DecodeError) {
	t.Helper()
	var bad []*DecodeError
	d := Decoder{Malformed: func(e *DecodeError) { bad = append(bad, e) }}

	var events []Event
	for _, l := range lines {
		if ev, ok := d.Line(l); ok {
			events = append(events, ev)
		}
	}
	if ev, ok := d.Finish(); ok {
		events = append(events, ev)
	}
	return events, bad
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []Event
		wantBad int
	}{
		{
			name:  "event and data",
			lines: []string{"event: message_start", `data: {"type":"message_start"}`, ""},
			want:  []Event{{Type: "message_start", Data: `{"type":"message_start"}`}},
		},
		{
			name:  "data only",
			lines: []string{`data: {"a":1}`, ""},
			want:  []Event{{Data: `{"a":1}`}},
		},
		{
			name:  "multi-line data joined",
			lines: []string{"data: one", "data: two", ""},
			want:  []Event{{Data: "one\ntwo"}},
		},
		{
			name:  "no space after colon",
			lines: []string{"event:ping", "data:{}", ""},
			want:  []Event{{Type: "ping", Data: "{}"}},
		},
		{
			name:  "comments and id ignored",
			lines: []string{": keepalive", "id: 7", "retry: 100", "data: x", ""},
			want:  []Event{{Data: "x"}},
		},
		{
			name:  "event without data discarded",
			lines: []string{"event: ping", "", "data: y", ""},
			want:  []Event{{Data: "y"}},
		},
		{
			name:  "type does not leak into next event",
			lines: []string{"event: a", "data: 1", "", "data: 2", ""},
			want:  []Event{{Type: "a", Data: "1"}, {Data: "2"}},
		},
		{
			name:  "pending event dispatched at EOF",
			lines: []string{"event: message_stop", `data: {"type":"message_stop"}`},
			want:  []Event{{Type: "message_stop", Data: `{"type":"message_stop"}`}},
		},
		{
			name:    "garbage line reported",
			lines:   []string{"not a field", "data: z", ""},
			want:    []Event{{Data: "z"}},
			wantBad: 1,
		},
		{
			name:  "blank lines only",
			lines: []string{"", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bad := decodeAll(t, tt.lines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %+v, want %+v", got, tt.want)
			}
			if len(bad) != tt.wantBad {
				t.Errorf("malformed = %d, want %d", len(bad), tt.wantBad)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	err := NewDecodeError(string(long), "invalid JSON", nil)
	if len(err.Line) > maxFragment+3 {
		t.Errorf("fragment not truncated: %d bytes", len(err.Line))
	}
	if err.Error() != "sse decode: invalid JSON" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
