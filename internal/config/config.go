// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the MCP demo server
type Config struct {
	Name    string `json:"name" validate:"required"`
	Version string `json:"version" validate:"required"`

	Host      string `json:"host" validate:"required"`
	Port      int    `json:"port" validate:"min=1,max=65535"`
	Transport string `json:"transport" validate:"oneof=stdio sse streamable-http"`

	LogLevel  string `json:"log_level" validate:"oneof=trace debug info warn error fatal"`
	LogFormat string `json:"log_format" validate:"oneof=console json"`

	CacheBackend string `json:"cache_backend" validate:"oneof=memory redis"`
	RedisAddr    string `json:"redis_addr" validate:"required_if=CacheBackend redis"`

	TraceExporter  string `json:"trace_exporter" validate:"oneof=stdout otlp jaeger noop"`
	OTLPEndpoint   string `json:"otlp_endpoint"`
	JaegerEndpoint string `json:"jaeger_endpoint"`

	MetricsBackend string `json:"metrics_backend" validate:"oneof=prometheus simple off"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Name:           "demo-server",
		Version:        "1.0.0",
		Host:           "0.0.0.0",
		Port:           8000,
		Transport:      "streamable-http",
		LogLevel:       "info",
		LogFormat:      "console",
		CacheBackend:   "memory",
		TraceExporter:  "noop",
		MetricsBackend: "prometheus",
	}
}

// FromEnv builds a configuration from environment variables, falling
// back to defaults for anything unset.
func FromEnv() (*Config, error) {
	cfg := Default()

	setString(&cfg.Name, "MCP_SERVER_NAME")
	setString(&cfg.Host, "MCP_HOST")
	setString(&cfg.Transport, "MCP_TRANSPORT")
	setString(&cfg.LogLevel, "MCP_LOG_LEVEL")
	setString(&cfg.LogFormat, "MCP_LOG_FORMAT")
	setString(&cfg.CacheBackend, "MCP_CACHE_BACKEND")
	setString(&cfg.RedisAddr, "MCP_REDIS_ADDR")
	setString(&cfg.TraceExporter, "MCP_TRACE_EXPORTER")
	setString(&cfg.OTLPEndpoint, "MCP_OTLP_ENDPOINT")
	setString(&cfg.JaegerEndpoint, "MCP_JAEGER_ENDPOINT")
	setString(&cfg.MetricsBackend, "MCP_METRICS")

	if v := os.Getenv("MCP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MCP_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if cfg.CacheBackend == "redis" && cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
