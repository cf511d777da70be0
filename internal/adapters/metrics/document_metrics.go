package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DocumentMetricsCollector tracks document traffic per kind
type DocumentMetricsCollector struct {
	savesTotal    *prometheus.CounterVec
	loadsTotal    *prometheus.CounterVec
	documentBytes *prometheus.HistogramVec
}

// NewDocumentMetricsCollector creates a new document metrics collector
func NewDocumentMetricsCollector(namespace string) *DocumentMetricsCollector {
	return &DocumentMetricsCollector{
		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "saves_total",
				Help:      "Total number of document saves by kind",
			},
			[]string{"kind"},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "loads_total",
				Help:      "Total number of document loads by kind and whether a stored document existed",
			},
			[]string{"kind", "found"},
		),
		documentBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "size_bytes",
				Help:      "Size of saved documents",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
			},
			[]string{"kind"},
		),
	}
}

// Register registers all document metrics with the registry
func (c *DocumentMetricsCollector) Register(registry *prometheus.Registry) error {
	for _, metric := range []prometheus.Collector{c.savesTotal, c.loadsTotal, c.documentBytes} {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordSave records a stored document
func (c *DocumentMetricsCollector) RecordSave(kind string, size int) {
	c.savesTotal.WithLabelValues(kind).Inc()
	c.documentBytes.WithLabelValues(kind).Observe(float64(size))
}

// RecordLoad records a served document
func (c *DocumentMetricsCollector) RecordLoad(kind string, found bool) {
	f := "false"
	if found {
		f = "true"
	}
	c.loadsTotal.WithLabelValues(kind, f).Inc()
}
