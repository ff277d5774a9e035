package telemetry

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerConfig holds OpenTelemetry tracer configuration
type TracerConfig struct {
	ServiceName    string        `json:"service_name"`
	ServiceVersion string        `json:"service_version"`
	Environment    string        `json:"environment"`
	Enabled        bool          `json:"enabled"`
	SamplingRatio  float64       `json:"sampling_ratio"` // 0.0 to 1.0
	ExporterType   string        `json:"exporter_type"`  // "jaeger", "otlp", "stdout", "noop"
	JaegerEndpoint string        `json:"jaeger_endpoint"`
	OTLPEndpoint   string        `json:"otlp_endpoint"`
	BatchTimeout   time.Duration `json:"batch_timeout"`
	BatchSize      int           `json:"batch_size"`
}

// DefaultTracerConfig returns a default tracer configuration
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		ServiceName:    "mcp-demo-server",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Enabled:        true,
		SamplingRatio:  1.0,
		ExporterType:   "stdout",
		BatchTimeout:   5 * time.Second,
		BatchSize:      512,
	}
}

// TracerManager manages OpenTelemetry tracing setup and cleanup
type TracerManager struct {
	config   TracerConfig
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracerManager creates a new tracer manager
func NewTracerManager(config TracerConfig) *TracerManager {
	return &TracerManager{config: config}
}

// Initialize sets up OpenTelemetry tracing
func (tm *TracerManager) Initialize(ctx context.Context) error {
	if !tm.config.Enabled || tm.config.ExporterType == "noop" {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		tm.tracer = otel.Tracer(tm.config.ServiceName)
		return nil
	}

	res, err := tm.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := tm.createExporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(
		exporter,
		sdktrace.WithBatchTimeout(tm.config.BatchTimeout),
		sdktrace.WithMaxExportBatchSize(tm.config.BatchSize),
	)

	sampler := sdktrace.AlwaysSample()
	if tm.config.SamplingRatio < 1.0 {
		sampler = sdktrace.TraceIDRatioBased(tm.config.SamplingRatio)
	}

	tm.provider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tm.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tm.tracer = otel.Tracer(
		tm.config.ServiceName,
		trace.WithInstrumentationVersion(tm.config.ServiceVersion),
	)

	log.Printf("OpenTelemetry tracer initialized with %s exporter", tm.config.ExporterType)
	return nil
}

// Shutdown gracefully shuts down the tracer provider
func (tm *TracerManager) Shutdown(ctx context.Context) error {
	if tm.provider != nil {
		return tm.provider.Shutdown(ctx)
	}
	return nil
}

// GetTracer returns the configured tracer
func (tm *TracerManager) GetTracer() trace.Tracer {
	return tm.tracer
}

func (tm *TracerManager) createResource() (*resource.Resource, error) {
	attributes := []attribute.KeyValue{
		semconv.ServiceName(tm.config.ServiceName),
		semconv.ServiceVersion(tm.config.ServiceVersion),
		attribute.String("environment", tm.config.Environment),
	}

	if hostname, err := os.Hostname(); err == nil {
		attributes = append(attributes, semconv.HostName(hostname))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attributes...), nil
}

func (tm *TracerManager) createExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch tm.config.ExporterType {
	case "jaeger":
		return tm.createJaegerExporter()
	case "otlp":
		return tm.createOTLPExporter(ctx)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", tm.config.ExporterType)
	}
}

func (tm *TracerManager) createJaegerExporter() (sdktrace.SpanExporter, error) {
	endpoint := tm.config.JaegerEndpoint
	if endpoint == "" {
		endpoint = "http://localhost:14268/api/traces"
	}
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}

func (tm *TracerManager) createOTLPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	endpoint := tm.config.OTLPEndpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	return otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	))
}

// SpanAttributeBuilder helps build span attributes consistently
type SpanAttributeBuilder struct {
	attributes []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new span attribute builder
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attributes: make([]attribute.KeyValue, 0),
	}
}

// String adds a string attribute
func (b *SpanAttributeBuilder) String(key, value string) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.String(key, value))
	return b
}

// Int adds an integer attribute
func (b *SpanAttributeBuilder) Int(key string, value int) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.Int(key, value))
	return b
}

// Float64 adds a float64 attribute
func (b *SpanAttributeBuilder) Float64(key string, value float64) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.Float64(key, value))
	return b
}

// Bool adds a boolean attribute
func (b *SpanAttributeBuilder) Bool(key string, value bool) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.Bool(key, value))
	return b
}

// Component adds component name attribute
func (b *SpanAttributeBuilder) Component(component string) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.String("component", component))
	return b
}

// Operation adds operation name attribute
func (b *SpanAttributeBuilder) Operation(operation string) *SpanAttributeBuilder {
	b.attributes = append(b.attributes, attribute.String("operation", operation))
	return b
}

// MCP adds MCP-specific attributes
func (b *SpanAttributeBuilder) MCP(method, toolName string) *SpanAttributeBuilder {
	if method != "" {
		b.attributes = append(b.attributes, attribute.String("mcp.method", method))
	}
	if toolName != "" {
		b.attributes = append(b.attributes, attribute.String("mcp.tool", toolName))
	}
	return b
}

// Cache adds cache-related attributes
func (b *SpanAttributeBuilder) Cache(hit bool, key string) *SpanAttributeBuilder {
	b.attributes = append(b.attributes,
		attribute.Bool("cache.hit", hit),
		attribute.String("cache.key", key),
	)
	return b
}

// Build returns the built attributes
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attributes
}

// StartSpan starts a new span with common attributes
func StartSpan(ctx context.Context, tracer trace.Tracer, operationName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, operationName, trace.WithAttributes(attrs...))
}

// RecordError records an error in the span and sets status
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordSuccess sets the span status to OK
func RecordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span with attributes
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttributes adds multiple attributes to a span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}
