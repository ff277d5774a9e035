package builder

import (
	"github.com/YoussefAbdon/mcp-demo-server/internal/features/caches"
	"github.com/YoussefAbdon/mcp-demo-server/internal/features/loggers"
	"github.com/YoussefAbdon/mcp-demo-server/internal/features/metrics"
	"github.com/YoussefAbdon/mcp-demo-server/internal/features/telemetry"
	"github.com/YoussefAbdon/mcp-demo-server/pkg/features"
)

// Re-export configurations for public API
type PrometheusConfig = metrics.PrometheusConfig

// Factory functions for common feature configurations
// These provide convenient ways to create feature implementations with sensible defaults

// Logger factories

// ConsoleLogger creates a console logger with the specified level
func ConsoleLogger(name, level string) features.Logger {
	return loggers.NewConsole(name, level)
}

// JSONLogger creates a JSON formatter logger with the specified level
func JSONLogger(name, level string) features.Logger {
	return loggers.NewJSON(name, level)
}

// DebugLogger creates a console logger with debug level
func DebugLogger(name string) features.Logger {
	return loggers.NewConsole(name, "debug")
}

// ProductionLogger creates a JSON logger with info level
func ProductionLogger(name string) features.Logger {
	return loggers.NewJSON(name, "info")
}

// Cache factories

// MemoryCache creates an in-memory LRU cache with the specified max size
func MemoryCache(name string, maxSize int) features.Cache {
	return caches.NewMemory(name, maxSize)
}

// RedisCache creates a Redis-backed cache. It fails if the Redis server
// is unreachable.
func RedisCache(name, addr string) (features.Cache, error) {
	return caches.NewRedis(name, addr)
}

// Telemetry factories

// StdoutTelemetry creates a telemetry provider that prints spans to stdout
func StdoutTelemetry(name string) features.TelemetryProvider {
	return telemetry.NewStdout(name)
}

// OTLPTelemetry creates a telemetry provider exporting over OTLP HTTP
func OTLPTelemetry(name, endpoint string) features.TelemetryProvider {
	return telemetry.NewOTLP(name, endpoint)
}

// Metrics factories

// SimpleMetrics creates a metrics provider that logs measurements
func SimpleMetrics(name string) features.MetricsProvider {
	return metrics.NewSimple(name)
}

// PrometheusMetrics creates a Prometheus metrics provider
func PrometheusMetrics(name string) *metrics.PrometheusProvider {
	return metrics.NewPrometheus(name)
}

// PrometheusMetricsWithConfig creates a Prometheus metrics provider with
// custom namespace, labels, and buckets
func PrometheusMetricsWithConfig(name string, config PrometheusConfig) *metrics.PrometheusProvider {
	return metrics.NewPrometheusWithConfig(name, config)
}
