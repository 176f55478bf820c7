package sse

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriter_Commit(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	if w.Committed() {
		t.Fatal("new writer should not be committed")
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if err := w.Commit(); !errors.Is(err, ErrCommitted) {
		t.Errorf("second Commit() = %v, want ErrCommitted", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	want := map[string]string{
		"Content-Type":      "text/event-stream",
		"Cache-Control":     "no-cache",
		"Connection":        "keep-alive",
		"X-Accel-Buffering": "no",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if !rec.Flushed {
		t.Error("expected headers to be flushed")
	}
}

func TestWriter_WriteEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		data      string
		want      string
	}{
		{
			name: "data only",
			data: `{"type":"content_block_delta"}`,
			want: "data: {\"type\":\"content_block_delta\"}\n\n",
		},
		{
			name:      "with event line",
			eventType: "message_stop",
			data:      `{"type":"message_stop"}`,
			want:      "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n",
		},
		{
			name: "multi-line data",
			data: "a\nb",
			want: "data: a\ndata: b\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := NewWriter(rec)

			if err := w.WriteEvent(tt.eventType, tt.data); err != nil {
				t.Fatalf("WriteEvent() error: %v", err)
			}
			if !w.Committed() {
				t.Error("first frame should commit headers")
			}
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if w.Frames() != 1 {
				t.Errorf("Frames() = %d, want 1", w.Frames())
			}
		})
	}
}

func TestWriter_ErrorAndDone(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	if err := w.WriteError(`upstream "closed"`); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDone(); err != nil {
		t.Fatal(err)
	}

	body := rec.Body.String()
	wantErr := "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"upstream_unavailable\",\"message\":\"upstream \\\"closed\\\"\"}}\n\n"
	if !strings.HasPrefix(body, wantErr) {
		t.Errorf("error frame = %q, want prefix %q", body, wantErr)
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("missing done marker in %q", body)
	}
}

type failingWriter struct {
	http.ResponseWriter
}

func (f failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriter_WriteFailure(t *testing.T) {
	w := NewWriter(failingWriter{httptest.NewRecorder()})
	if err := w.WriteEvent("", "x"); err == nil {
		t.Fatal("expected write error")
	}
	if w.Frames() != 0 {
		t.Errorf("failed frame counted: %d", w.Frames())
	}
}
