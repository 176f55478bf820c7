package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"hypedigitaly/claude-relay/pkg/proxy"
	"hypedigitaly/claude-relay/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in handlers. If nothing was written
// yet the client gets a 500 JSON error; a stream already in progress is
// simply cut off. http.ErrAbortHandler is re-raised so net/http can abort
// the connection silently.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.written {
					return
				}
				_ = proxy.WriteJSONResponse(rw, http.StatusInternalServerError, types.NewServerError())
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
