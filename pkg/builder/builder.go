// Package builder provides a fluent interface for configuring and building MCP servers
package builder

import (
	"context"
	"fmt"

	"github.com/YoussefAbdon/mcp-demo-server/internal/config"
	"github.com/YoussefAbdon/mcp-demo-server/internal/server"
	"github.com/YoussefAbdon/mcp-demo-server/pkg/features"
	"github.com/YoussefAbdon/mcp-demo-server/transport"
)

// Builder provides a fluent interface for configuring and building MCP servers
type Builder struct {
	config *config.Config

	loggers     []features.Logger
	caches      []features.Cache
	telemetries []features.TelemetryProvider
	metrics     []features.MetricsProvider
}

// New creates a new server builder with default configuration
func New(name, version string) *Builder {
	cfg := config.Default()
	cfg.Name = name
	cfg.Version = version

	return &Builder{
		config:      cfg,
		loggers:     make([]features.Logger, 0),
		caches:      make([]features.Cache, 0),
		telemetries: make([]features.TelemetryProvider, 0),
		metrics:     make([]features.MetricsProvider, 0),
	}
}

// FromConfig creates a builder from an existing configuration
func FromConfig(cfg *config.Config) *Builder {
	return &Builder{
		config:      cfg,
		loggers:     make([]features.Logger, 0),
		caches:      make([]features.Cache, 0),
		telemetries: make([]features.TelemetryProvider, 0),
		metrics:     make([]features.MetricsProvider, 0),
	}
}

// WithName sets the server name
func (b *Builder) WithName(name string) *Builder {
	b.config.Name = name
	return b
}

// WithVersion sets the server version
func (b *Builder) WithVersion(version string) *Builder {
	b.config.Version = version
	return b
}

// WithLogger adds a logger implementation
func (b *Builder) WithLogger(logger features.Logger) *Builder {
	b.loggers = append(b.loggers, logger)
	return b
}

// WithCache adds a cache implementation
func (b *Builder) WithCache(cache features.Cache) *Builder {
	b.caches = append(b.caches, cache)
	return b
}

// WithTelemetry adds a telemetry provider implementation
func (b *Builder) WithTelemetry(provider features.TelemetryProvider) *Builder {
	b.telemetries = append(b.telemetries, provider)
	return b
}

// WithMetrics adds a metrics provider implementation
func (b *Builder) WithMetrics(provider features.MetricsProvider) *Builder {
	b.metrics = append(b.metrics, provider)
	return b
}

// Build creates and configures the MCP server
func (b *Builder) Build() (*ConfiguredServer, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	srv := server.NewServer(b.config.Name, b.config.Version)

	configuredServer := &ConfiguredServer{
		Server:      srv,
		config:      b.config,
		loggers:     b.loggers,
		caches:      b.caches,
		telemetries: b.telemetries,
		metrics:     b.metrics,
	}

	configuredServer.initializeFeatures()

	return configuredServer, nil
}

// BuildAndStart creates the server and starts it with the provided transport
func (b *Builder) BuildAndStart(t transport.Transport) error {
	srv, err := b.Build()
	if err != nil {
		return err
	}
	return srv.Start(t)
}

// GetConfig returns the current configuration
func (b *Builder) GetConfig() *config.Config {
	return b.config
}

// GetFeatureSummary returns a summary of configured features
func (b *Builder) GetFeatureSummary() map[string]int {
	return map[string]int{
		"loggers":     len(b.loggers),
		"caches":      len(b.caches),
		"telemetries": len(b.telemetries),
		"metrics":     len(b.metrics),
	}
}

// ConfiguredServer wraps the base server with configured features
type ConfiguredServer struct {
	*server.Server
	config      *config.Config
	loggers     []features.Logger
	caches      []features.Cache
	telemetries []features.TelemetryProvider
	metrics     []features.MetricsProvider
}

// initializeFeatures wires the first provider of each kind into the
// base server.
func (cs *ConfiguredServer) initializeFeatures() {
	if len(cs.loggers) > 0 {
		cs.Server.SetLogger(cs.loggers[0])
	}
	if len(cs.caches) > 0 {
		cs.Server.SetResourceCache(cs.caches[0])
	}
	if len(cs.telemetries) > 0 {
		tracer := cs.telemetries[0].CreateTracer(cs.config.Name)
		cs.Server.SetTracer(tracer)
	}
	if len(cs.metrics) > 0 {
		cs.Server.SetMetricsProvider(cs.metrics[0])
	}
}

// Name returns the server name
func (cs *ConfiguredServer) Name() string {
	return cs.config.Name
}

// Config returns the server configuration
func (cs *ConfiguredServer) Config() *config.Config {
	return cs.config
}

// GetLoggers returns all configured loggers
func (cs *ConfiguredServer) GetLoggers() []features.Logger {
	return cs.loggers
}

// GetCaches returns all configured caches
func (cs *ConfiguredServer) GetCaches() []features.Cache {
	return cs.caches
}

// GetTelemetries returns all configured telemetry providers
func (cs *ConfiguredServer) GetTelemetries() []features.TelemetryProvider {
	return cs.telemetries
}

// GetMetricsProviders returns all configured metrics providers
func (cs *ConfiguredServer) GetMetricsProviders() []features.MetricsProvider {
	return cs.metrics
}

// GetCacheByName finds a cache by name
func (cs *ConfiguredServer) GetCacheByName(name string) features.Cache {
	for _, cache := range cs.caches {
		if cache.Name() == name {
			return cache
		}
	}
	return nil
}

// Close gracefully shuts down all features
func (cs *ConfiguredServer) Close() error {
	var errs []error

	for _, logger := range cs.loggers {
		if logger != nil {
			if err := logger.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, cache := range cs.caches {
		if cache != nil {
			if err := cache.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, metrics := range cs.metrics {
		if metrics != nil {
			if err := metrics.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, telemetry := range cs.telemetries {
		if telemetry != nil {
			if err := telemetry.Shutdown(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
