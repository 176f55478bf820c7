package metrics

import "github.com/prometheus/client_golang/prometheus"

// StreamMetrics tracks relayed streams.
type StreamMetrics struct {
	total          *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	firstFrame     prometheus.Histogram
	active         prometheus.Gauge
	events         *prometheus.CounterVec
	decodeErrors   prometheus.Counter
	upstreamErrors *prometheus.CounterVec
}

// NewStreamMetrics creates and registers stream metrics.
func NewStreamMetrics(namespace string, buckets []float64, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total number of committed client streams by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_duration_seconds",
				Help:      "Duration of committed client streams in seconds",
				Buckets:   buckets,
			},
			[]string{"outcome"},
		),
		firstFrame: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_first_frame_seconds",
				Help:      "Time from request arrival to the first frame written to the client",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "streams_active",
				Help:      "Number of client streams currently open",
			},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Upstream events by kind and forwarding decision",
			},
			[]string{"kind", "action"},
		),
		decodeErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_errors_total",
				Help:      "Malformed upstream fragments dropped",
			},
		),
		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_errors_total",
				Help:      "Failed upstream calls by error kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		sm.total,
		sm.duration,
		sm.firstFrame,
		sm.active,
		sm.events,
		sm.decodeErrors,
		sm.upstreamErrors,
	)
	return sm
}
