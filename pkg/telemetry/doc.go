// Package telemetry groups the relay's observability packages.
//
//   - logging: slog construction, request-scoped loggers, credential redaction
//   - metrics: Prometheus collectors for requests, streams and relayed events
//   - tracing: OpenTelemetry spans for inbound requests and upstream calls
//   - health: readiness checks behind GET /ready
//
// Each subpackage is configured from the telemetry section of the config
// file and wired together in cmd/relay.
package telemetry
