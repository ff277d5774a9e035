// Command mcp-demo-server runs the MCP demo server. It serves the demo
// toolset (add, multiply, greet, get_server_info) and the demo://ping
// resource over stdio, SSE, or streamable HTTP, configured entirely
// through MCP_* environment variables.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YoussefAbdon/mcp-demo-server/internal/config"
	"github.com/YoussefAbdon/mcp-demo-server/internal/demo"
	"github.com/YoussefAbdon/mcp-demo-server/internal/telemetry"
	"github.com/YoussefAbdon/mcp-demo-server/pkg/builder"
	"github.com/YoussefAbdon/mcp-demo-server/pkg/features"
	"github.com/YoussefAbdon/mcp-demo-server/transport"
)

func main() {
	if err := run(); err != nil {
		log.Printf("mcp-demo-server: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	b := builder.FromConfig(cfg).
		WithLogger(newLogger(cfg))

	cache, err := newCache(cfg)
	if err != nil {
		return err
	}
	b.WithCache(cache)

	var metricsHandler http.Handler
	switch cfg.MetricsBackend {
	case "prometheus":
		prom := builder.PrometheusMetrics("server")
		metricsHandler = prom.HTTPHandler()
		b.WithMetrics(prom)
	case "simple":
		b.WithMetrics(builder.SimpleMetrics("server"))
	}

	srv, err := b.Build()
	if err != nil {
		return err
	}
	defer srv.Close()

	// Distributed tracing is managed outside the builder so the jaeger
	// and otlp exporters share one provider with batching and sampling.
	tm := telemetry.NewTracerManager(telemetry.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    "production",
		Enabled:        cfg.TraceExporter != "noop",
		SamplingRatio:  1.0,
		ExporterType:   cfg.TraceExporter,
		JaegerEndpoint: cfg.JaegerEndpoint,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		BatchTimeout:   5 * time.Second,
		BatchSize:      512,
	})
	if err := tm.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tm.Shutdown(ctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()
	srv.SetTracer(tm.GetTracer())

	if err := demo.Register(srv.Registry(), cfg.Name); err != nil {
		return fmt.Errorf("failed to register demo toolset: %w", err)
	}

	t, err := newTransport(cfg, metricsHandler)
	if err != nil {
		return err
	}

	// Close the transport on SIGINT/SIGTERM so Start returns cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received %s, shutting down", sig)
		if err := t.Close(); err != nil {
			log.Printf("transport close: %v", err)
		}
	}()

	return srv.Start(t)
}

func newLogger(cfg *config.Config) features.Logger {
	if cfg.LogFormat == "json" {
		return builder.JSONLogger("main", cfg.LogLevel)
	}
	return builder.ConsoleLogger("main", cfg.LogLevel)
}

func newCache(cfg *config.Config) (features.Cache, error) {
	if cfg.CacheBackend == "redis" {
		cache, err := builder.RedisCache("resources", cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return cache, nil
	}
	return builder.MemoryCache("resources", 1000), nil
}

func newTransport(cfg *config.Config, metricsHandler http.Handler) (transport.Transport, error) {
	switch cfg.Transport {
	case "stdio":
		return transport.NewStdioTransport(transport.StdioConfig{}), nil
	case "sse":
		return transport.NewSSETransport(transport.HTTPConfig{
			Host:    cfg.Host,
			Port:    cfg.Port,
			Metrics: metricsHandler,
		}), nil
	case "streamable-http":
		return transport.NewStreamableHTTPTransport(transport.HTTPConfig{
			Host:    cfg.Host,
			Port:    cfg.Port,
			Metrics: metricsHandler,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}
