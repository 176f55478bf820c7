// Package middleware provides the HTTP middleware chain for the relay.
//
// The server applies them outermost first:
//
//	RecoveryMiddleware   turn handler panics into 500 JSON
//	RequestIDMiddleware  X-Request-ID in context, logs and response headers
//	TracingMiddleware    continue inbound W3C trace context
//	LoggingMiddleware    one structured line per request
//	MetricsMiddleware    request count and latency by route
//	CORSMiddleware       CORS headers, 204 for preflight
//
// Every wrapper around http.ResponseWriter keeps Flush and Unwrap working,
// since chat responses are streamed.
package middleware
