// Package handlers implements the relay's HTTP handlers.
//
// ChatHandler serves POST /chat and its aliases. A request goes through
// three stages:
//
//  1. Parse and validate the body. Failures are answered with 400 JSON and
//     upstream is never contacted.
//  2. Open the upstream stream. A failure here (connect, timeout, non-2xx)
//     is answered with 5xx JSON, since nothing has been streamed yet.
//  3. Commit the SSE headers and relay events until upstream ends, fails,
//     goes idle, or the client disconnects. From here on failures are only
//     reported in-band.
//
// HealthHandler answers liveness probes with {"status":"ok"}.
package handlers
