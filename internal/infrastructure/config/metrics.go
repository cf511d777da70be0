package config

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Path for the metrics endpoint on the server (default: /metrics)
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`

	// Namespace prefixed to every metric name
	Namespace string `mapstructure:"namespace"`
}
