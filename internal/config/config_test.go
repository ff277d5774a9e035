package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", cfg.Host)
	}
	if cfg.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", cfg.Port)
	}
	if cfg.Transport != "streamable-http" {
		t.Errorf("Expected streamable-http transport, got %s", cfg.Transport)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MCP_HOST", "127.0.0.1")
	t.Setenv("MCP_PORT", "9000")
	t.Setenv("MCP_TRANSPORT", "stdio")
	t.Setenv("MCP_LOG_FORMAT", "json")
	t.Setenv("MCP_CACHE_BACKEND", "redis")
	t.Setenv("MCP_METRICS", "off")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected host override, got %s", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Port)
	}
	if cfg.Transport != "stdio" {
		t.Errorf("Expected stdio transport, got %s", cfg.Transport)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected json log format, got %s", cfg.LogFormat)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected default redis addr, got %s", cfg.RedisAddr)
	}
	if cfg.MetricsBackend != "off" {
		t.Errorf("Expected metrics off, got %s", cfg.MetricsBackend)
	}
}

func TestFromEnvInvalidPort(t *testing.T) {
	t.Setenv("MCP_PORT", "not-a-port")

	if _, err := FromEnv(); err == nil {
		t.Error("Expected error for invalid port")
	}
}

func TestFromEnvInvalidTransport(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "websocket")

	if _, err := FromEnv(); err == nil {
		t.Error("Expected validation error for unsupported transport")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for bad log level")
	}
}

func TestValidateRejectsPortOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for out-of-range port")
	}
}
