// Package metrics provides Prometheus metrics for the relay.
//
// # Metrics
//
//   - relay_http_requests_total{route,method,status}
//   - relay_http_request_duration_seconds{route,method}
//   - relay_streams_total{outcome}
//   - relay_stream_duration_seconds{outcome}
//   - relay_stream_first_frame_seconds
//   - relay_streams_active
//   - relay_events_total{kind,action}: action is "forwarded" or "skipped"
//   - relay_decode_errors_total
//   - relay_upstream_errors_total{kind}
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	r := relay.New(opts, logger, collector) // Collector is a relay.Observer
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A collector built from a disabled configuration records nothing.
package metrics
