package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/proxy/types"
	"hypedigitaly/claude-relay/pkg/telemetry/logging"
	"hypedigitaly/claude-relay/pkg/telemetry/tracing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	}))

	t.Run("generates UUID", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("generated ID %q is not a UUID: %v", seen, err)
		}
		if w.Header().Get(RequestIDHeader) != seen {
			t.Errorf("response header %q does not match context %q", w.Header().Get(RequestIDHeader), seen)
		}
	})

	t.Run("keeps client ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-123")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen != "client-123" {
			t.Errorf("request ID = %q", seen)
		}
	})

	t.Run("replaces malformed client ID", func(t *testing.T) {
		for _, bad := range []string{"has space", strings.Repeat("a", 200), "line\nbreak"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, bad)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if seen == bad {
				t.Errorf("malformed ID %q was kept", bad)
			}
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["status"] != float64(400) || entry["bytes"] != float64(4) {
		t.Errorf("unexpected log entry %v", entry)
	}
	if entry["path"] != "/chat" {
		t.Errorf("path = %v", entry["path"])
	}
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := LoggingMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data: x\n\n"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Flush through middleware failed: %v", err)
		}
	}))
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))

	if !rec.Flushed {
		t.Error("underlying writer was not flushed")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		handler := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", w.Code)
		}
		var body types.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error != types.MessageInternal || strings.Contains(body.Details, "test panic") {
			t.Errorf("unexpected body %+v", body)
		}
	})

	t.Run("leaves committed response alone", func(t *testing.T) {
		handler := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("data: partial\n\n"))
			panic("mid-stream")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))

		if w.Code != http.StatusOK || w.Body.String() != "data: partial\n\n" {
			t.Errorf("committed response modified: %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("re-raises ErrAbortHandler", func(t *testing.T) {
		handler := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		defer func() {
			if rec := recover(); rec != http.ErrAbortHandler {
				t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
			}
		}()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		RecoveryMiddleware(quietLogger())(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("got %d %q", w.Code, w.Body.String())
		}
	})
}

func corsConfig(origins ...string) config.CORSConfig {
	cfg := config.NewDefaultConfig().CORS
	if len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	return cfg
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("wildcard by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.Header.Set("Origin", "https://chat.openai.com")
		w := httptest.NewRecorder()
		CORSMiddleware(corsConfig())(okHandler()).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
			t.Errorf("Expose-Headers = %q", got)
		}
	})

	t.Run("echoes listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		CORSMiddleware(corsConfig("https://example.com"))(okHandler()).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if w.Header().Get("Vary") != "Origin" {
			t.Error("missing Vary: Origin")
		}
	})

	t.Run("rejects unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		CORSMiddleware(corsConfig("https://example.com"))(okHandler()).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		CORSMiddleware(corsConfig())(okHandler()).ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Allow-Methods = %q", got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Max-Age = %q", got)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := corsConfig()
		off := false
		cfg.Enabled = &off

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		CORSMiddleware(cfg)(okHandler()).ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("CORS headers set while disabled")
		}
	})
}

type recordedRequest struct {
	route  string
	method string
	status int
}

type fakeRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(route, method string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, recordedRequest{route, method, status})
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(rec))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(rec.reqs) != 2 {
		t.Fatalf("expected 2 recorded requests, got %d", len(rec.reqs))
	}
	if got := rec.reqs[0]; got != (recordedRequest{"/items/{id}", "GET", 202}) {
		t.Errorf("first request recorded as %+v", got)
	}
	if got := rec.reqs[1]; got.route != "unmatched" || got.status != 404 {
		t.Errorf("unmatched request recorded as %+v", got)
	}
}

func TestTracingMiddleware(t *testing.T) {
	tracer, err := tracing.New(&config.TracingConfig{}, "test")
	if err != nil {
		t.Fatal(err)
	}

	var traceID string
	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = tracing.TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if traceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("inbound trace not continued, got %q", traceID)
	}
}
