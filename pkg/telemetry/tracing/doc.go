// Package tracing sets up OpenTelemetry tracing for the relay.
//
// When enabled, spans are exported over OTLP gRPC and W3C trace context is
// propagated from inbound requests. When disabled, New returns a tracer
// backed by a noop provider so call sites never branch on configuration.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(ctx)
//	client := upstream.NewClient(ucfg, logger, upstream.WithTracer(tracer.Tracer()))
package tracing
