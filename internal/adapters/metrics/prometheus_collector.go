package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name when none is configured
const DefaultNamespace = "fleetdeck"

// Collectors owns the registry and every metrics collector of the server.
// A nil *Collectors is valid and records nothing (metrics disabled).
type Collectors struct {
	Registry  *prometheus.Registry
	Commands  *CommandMetricsCollector
	HTTP      *HTTPMetricsCollector
	Documents *DocumentMetricsCollector
}

// New creates a registry with the runtime collectors plus the server's own
func New(namespace string) (*Collectors, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collectors{
		Registry:  prometheus.NewRegistry(),
		Commands:  NewCommandMetricsCollector(namespace),
		HTTP:      NewHTTPMetricsCollector(namespace),
		Documents: NewDocumentMetricsCollector(namespace),
	}

	runtime := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, collector := range runtime {
		if err := c.Registry.Register(collector); err != nil {
			return nil, err
		}
	}

	for _, register := range []func(*prometheus.Registry) error{
		c.Commands.Register,
		c.HTTP.Register,
		c.Documents.Register,
	} {
		if err := register(c.Registry); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IsEnabled returns true if metrics collection is enabled
func (c *Collectors) IsEnabled() bool {
	return c != nil && c.Registry != nil
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collectors) Handler() http.Handler {
	if !c.IsEnabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
