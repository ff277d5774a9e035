package telemetry

import (
	"context"
	"testing"
)

func TestNewStdout(t *testing.T) {
	provider := NewStdout("test")

	if provider.Name() != "test" {
		t.Errorf("Expected name test, got %s", provider.Name())
	}

	tracer := provider.CreateTracer("mcp-demo-server")
	if tracer == nil {
		t.Fatal("Expected non-nil tracer")
	}

	// Spans should start and end without error
	_, span := tracer.Start(context.Background(), "test.operation")
	span.End()

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestStdoutShutdownNilContext(t *testing.T) {
	provider := NewStdout("test")
	if err := provider.Shutdown(nil); err != nil {
		t.Errorf("Shutdown with nil context failed: %v", err)
	}
}
