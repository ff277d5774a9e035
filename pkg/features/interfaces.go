// Package features defines interfaces for pluggable server components
package features

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents logging severity
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "trace"
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	case FATAL:
		return "fatal"
	default:
		return "info"
	}
}

// Logger interface for logging implementations
type Logger interface {
	Name() string
	Log(level LogLevel, message string, fields map[string]interface{})
	Close() error
}

// Cache interface for caching implementations
type Cache interface {
	Name() string
	Get(key string) (interface{}, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
	Clear() error
	Close() error
}

// TelemetryProvider interface for telemetry implementations
type TelemetryProvider interface {
	Name() string
	CreateTracer(serviceName string) trace.Tracer
	Shutdown(ctx context.Context) error
}

// MetricsProvider interface for metrics implementations
type MetricsProvider interface {
	Name() string
	RecordCounter(name string, value int64, labels map[string]string)
	RecordGauge(name string, value float64, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	Close() error
}
