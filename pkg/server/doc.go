// Package server wires the relay's HTTP surface: the chi router, the
// middleware chain and the http.Server lifecycle.
//
// Routes:
//
//	POST /chat                 relay a chat request as SSE
//	POST /api/claude/chat      alias used by older extension builds
//	POST /api/claude-stream    alias used by older extension builds
//	GET  /, /health            liveness
//	GET  /ready                readiness (when a checker is configured)
//	GET  /metrics              Prometheus exposition (when enabled)
//
// The server has no write timeout by default since a stream may legitimately
// run for minutes; stalled upstreams are caught by the relay's idle timeout
// instead.
package server
