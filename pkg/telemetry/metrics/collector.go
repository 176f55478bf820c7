package metrics

import (
	"time"

	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/relay"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the relay's metrics and the registry they live in.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requests *RequestMetrics
	streams  *StreamMetrics
}

var _ relay.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics. If registry is
// nil a fresh one is created with Go runtime and process collectors.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}
	buckets := cfg.StreamDurationBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	return &Collector{
		enabled:  cfg.MetricsEnabled(),
		registry: registry,
		requests: NewRequestMetrics(namespace, registry),
		streams:  NewStreamMetrics(namespace, buckets, registry),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// RecordHTTPRequest records one completed inbound request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.requests.Record(route, method, status, duration)
}

// StreamStarted marks a client stream as committed.
func (c *Collector) StreamStarted() {
	if !c.enabled {
		return
	}
	c.streams.active.Inc()
}

// StreamFinished records the end of a committed stream.
func (c *Collector) StreamFinished(outcome string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.streams.active.Dec()
	c.streams.total.WithLabelValues(outcome).Inc()
	c.streams.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// FirstFrame records the time from request start to the first frame
// written to the client.
func (c *Collector) FirstFrame(latency time.Duration) {
	if !c.enabled {
		return
	}
	c.streams.firstFrame.Observe(latency.Seconds())
}

// RecordUpstreamError counts a failed upstream call by error kind.
func (c *Collector) RecordUpstreamError(kind string) {
	if !c.enabled {
		return
	}
	c.streams.upstreamErrors.WithLabelValues(kind).Inc()
}

// EventForwarded implements relay.Observer.
func (c *Collector) EventForwarded(kind relay.Kind) {
	if !c.enabled {
		return
	}
	c.streams.events.WithLabelValues(kind.String(), "forwarded").Inc()
}

// EventSkipped implements relay.Observer.
func (c *Collector) EventSkipped(kind relay.Kind) {
	if !c.enabled {
		return
	}
	c.streams.events.WithLabelValues(kind.String(), "skipped").Inc()
}

// DecodeFailed implements relay.Observer.
func (c *Collector) DecodeFailed() {
	if !c.enabled {
		return
	}
	c.streams.decodeErrors.Inc()
}
