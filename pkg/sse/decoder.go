package sse

import "strings"

// Event is one decoded SSE event.
type Event struct {
	// Type is the value of the last event: field, empty when absent.
	Type string

	// Data is the concatenation of all data: fields, joined by '\n'.
	Data string
}

// Decoder folds lines into events. The zero value is ready to use.
//
// Comment lines (leading ':') and the id and retry fields are ignored.
// Lines that are not fields at all are reported through Malformed and
// otherwise skipped.
type Decoder struct {
	eventType string
	data      []string
	hasData   bool

	// Malformed, when set, is called for every line that could not be
	// interpreted. Decoding continues regardless.
	Malformed func(*DecodeError)
}

// Line processes one line and returns an event when the line dispatches one.
func (d *Decoder) Line(line string) (Event, bool) {
	if line == "" {
		return d.dispatch()
	}

	if line[0] == ':' {
		return Event{}, false
	}

	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "event":
		d.eventType = value
	case "data":
		d.data = append(d.data, value)
		d.hasData = true
	case "id", "retry":
	default:
		if d.Malformed != nil {
			d.Malformed(NewDecodeError(line, "unrecognized field", nil))
		}
	}
	return Event{}, false
}

// Finish dispatches an event left pending when the stream ended without a
// final blank line. Events without data are discarded.
func (d *Decoder) Finish() (Event, bool) {
	return d.dispatch()
}

func (d *Decoder) dispatch() (Event, bool) {
	defer d.reset()

	if !d.hasData {
		return Event{}, false
	}
	return Event{Type: d.eventType, Data: strings.Join(d.data, "\n")}, true
}

func (d *Decoder) reset() {
	d.eventType = ""
	d.data = d.data[:0]
	d.hasData = false
}
