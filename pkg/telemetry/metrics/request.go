package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound HTTP requests.
type RequestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics.
func NewRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds, including the full stream",
				Buckets:   []float64{0.005, 0.05, 0.25, 1, 5, 15, 60, 300},
			},
			[]string{"route", "method"},
		),
	}

	registry.MustRegister(rm.total, rm.duration)
	return rm
}

// Record records one completed request.
func (rm *RequestMetrics) Record(route, method string, status int, duration time.Duration) {
	rm.total.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.duration.WithLabelValues(route, method).Observe(duration.Seconds())
}
