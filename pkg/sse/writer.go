package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Frame headers committed before the first byte of a stream.
var streamHeaders = [...][2]string{
	{"Content-Type", "text/event-stream"},
	{"Cache-Control", "no-cache"},
	{"Connection", "keep-alive"},
	// Stops nginx from buffering the stream.
	{"X-Accel-Buffering", "no"},
}

// ErrorType is the in-band error type reported when upstream fails after the
// stream is committed.
const ErrorType = "upstream_unavailable"

// Writer emits SSE frames to an HTTP response. It is not safe for
// concurrent use; one request owns one Writer.
type Writer struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	committed bool
	frames    int
}

// NewWriter wraps w. Nothing is written until Commit or the first frame.
func NewWriter(w http.ResponseWriter) *Writer {
	return &Writer{w: w, rc: http.NewResponseController(w)}
}

// Commit sends the streaming headers and a 200 status. It may be called
// once; later calls return ErrCommitted.
func (w *Writer) Commit() error {
	if w.committed {
		return ErrCommitted
	}
	w.committed = true

	h := w.w.Header()
	for _, kv := range streamHeaders {
		h.Set(kv[0], kv[1])
	}
	h.Del("Content-Length")
	w.w.WriteHeader(http.StatusOK)

	return w.flush()
}

// Committed reports whether headers have been sent.
func (w *Writer) Committed() bool {
	return w.committed
}

// Frames reports the number of frames written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// WriteEvent writes one frame and flushes it. An empty eventType omits the
// event: line. Multi-line data is split across data: fields.
func (w *Writer) WriteEvent(eventType string, data string) error {
	if !w.committed {
		if err := w.Commit(); err != nil {
			return err
		}
	}

	var sb strings.Builder
	if eventType != "" {
		sb.WriteString("event: ")
		sb.WriteString(eventType)
		sb.WriteByte('\n')
	}
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	if _, err := w.w.Write([]byte(sb.String())); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	if err := w.flush(); err != nil {
		return err
	}
	w.frames++
	return nil
}

// errorFrame is the payload of an in-band error event. Its shape mirrors
// upstream error events so clients need a single parser.
type errorFrame struct {
	Type  string      `json:"type"`
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WriteError writes a terminal in-band error event.
func (w *Writer) WriteError(message string) error {
	data, err := json.Marshal(errorFrame{
		Type:  "error",
		Error: errorDetail{Type: ErrorType, Message: message},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SSE error: %w", err)
	}
	return w.WriteEvent("error", string(data))
}

// WriteDone writes the "[DONE]" marker some clients expect at the end.
func (w *Writer) WriteDone() error {
	return w.WriteEvent("", "[DONE]")
}

func (w *Writer) flush() error {
	if err := w.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush SSE frame: %w", err)
	}
	return nil
}
