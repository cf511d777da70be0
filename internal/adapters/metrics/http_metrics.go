package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsCollector handles all HTTP request metrics of the server
type HTTPMetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetricsCollector creates a new HTTP metrics collector
func NewHTTPMetricsCollector(namespace string) *HTTPMetricsCollector {
	return &HTTPMetricsCollector{
		// Total requests by method, route template, and status code
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by method, route, and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers all HTTP metrics with the registry
func (c *HTTPMetricsCollector) Register(registry *prometheus.Registry) error {
	for _, metric := range []prometheus.Collector{c.requestsTotal, c.requestDuration} {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest records a completed request
func (c *HTTPMetricsCollector) RecordRequest(method, route string, statusCode int, duration float64) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration)
}
