package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json", config: Config{Level: "info", Format: "json"}},
		{name: "text", config: Config{Level: "debug", Format: "text"}},
		{name: "defaults", config: Config{}},
		{name: "invalid level", config: Config{Level: "loud"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Writer = &buf
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	buf.Reset()
	return m
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	derived := l.With("component", "test")

	derived.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %s", buf.String())
	}

	if err := l.SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	derived.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("derived logger did not pick up the new level")
	}
	if l.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", l.Level())
	}

	if err := l.SetLevel("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogger_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(context.Background(), "req-42")
	l.InfoContext(ctx, "hello")

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-42" {
		t.Errorf("request_id = %v", m["request_id"])
	}

	l.Info("no context")
	m = decodeLine(t, &buf)
	if _, ok := m["request_id"]; ok {
		t.Error("request_id set without context value")
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Writer: &buf, Redact: true})
	if err != nil {
		t.Fatal(err)
	}

	l.Info("upstream call",
		"api_key", "sk-ant-api03-abcdefghijkl",
		"x-api-key", "anything",
		"max_tokens", 4096,
		"url", "https://example.com/?key=sk-ant-api03-abcdefghijkl",
		"error", errors.New("rejected key sk-ant-api03-abcdefghijkl"),
	)

	out := buf.String()
	if strings.Contains(out, "abcdefghijkl") {
		t.Fatalf("credential leaked: %s", out)
	}

	m := decodeLine(t, &buf)
	if m["api_key"] != Redacted || m["x-api-key"] != Redacted {
		t.Errorf("sensitive keys not redacted: %v", m)
	}
	if m["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens should not be redacted: %v", m["max_tokens"])
	}
}

func TestLogger_NoRedaction(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Writer: &buf, Redact: false})
	l.Info("x", "api_key", "sk-ant-visible-1234")
	if !strings.Contains(buf.String(), "sk-ant-visible-1234") {
		t.Error("redaction applied while disabled")
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"api_key":       true,
		"X-Api-Key":     true,
		"Authorization": true,
		"access_token":  true,
		"client_secret": true,
		"max_tokens":    false,
		"model":         false,
		"tokenizer":     false,
	}
	for key, want := range tests {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()
	tests := []struct{ in, want string }{
		{"key sk-ant-REDACTED end", "key [REDACTED] end"},
		{"Authorization: Bearer abc.def", "Authorization: [REDACTED]"},
		{"sk-short", "sk-short"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := r.RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
