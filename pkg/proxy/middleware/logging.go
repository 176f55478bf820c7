package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"hypedigitaly/claude-relay/pkg/telemetry/tracing"
)

// LoggingMiddleware logs one line per request when the handler returns.
// Streamed responses are logged once the stream ends, so latency_ms is the
// full stream duration.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			ctx := r.Context()

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= 500:
				level = slog.LevelError
			case rw.statusCode >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}
			if traceID := tracing.TraceID(ctx); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}
			logger.Log(ctx, level, "request completed", attrs...)
		})
	}
}
