package config

import "time"

// ServerConfig holds persistence server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// Prefix the document routes are mounted under
	APIPrefix string `mapstructure:"api_prefix" validate:"required,startswith=/"`

	// Maximum accepted request body in bytes
	BodyLimit int64 `mapstructure:"body_limit" validate:"min=1"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// PID file location (empty disables it)
	PIDFile string `mapstructure:"pid_file"`

	// Allowed CORS origin; empty disables CORS headers
	CORSOrigin string `mapstructure:"cors_origin"`
}

// StorageConfig selects where documents are kept
type StorageConfig struct {
	// Backend: "file" (one JSON file per user and kind) or "database"
	Backend string `mapstructure:"backend" validate:"required,oneof=file database"`

	// Directory for the file backend
	DataDir string `mapstructure:"data_dir" validate:"required_if=Backend file"`
}
