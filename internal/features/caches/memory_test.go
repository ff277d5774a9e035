package caches

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemory("test", 10)

	if err := cache.Set("demo://ping", "pong", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := cache.Get("demo://ping")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "pong" {
		t.Errorf("Expected pong, got %v", value)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemory("test", 10)

	if _, err := cache.Get("missing"); err == nil {
		t.Error("Expected error for missing key")
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	cache := NewMemory("test", 10)

	if err := cache.Set("key", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := cache.Get("key"); err != nil {
		t.Fatalf("Expected key before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get("key"); err == nil {
		t.Error("Expected error for expired key")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	cache := NewMemory("test", 2)

	cache.Set("a", 1, 0)
	cache.Set("b", 2, 0)
	cache.Set("c", 3, 0)

	// Oldest entry is evicted once capacity is exceeded
	if _, err := cache.Get("a"); err == nil {
		t.Error("Expected oldest key to be evicted")
	}
	if _, err := cache.Get("c"); err != nil {
		t.Errorf("Expected newest key to remain: %v", err)
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	cache := NewMemory("test", 10)

	cache.Set("a", 1, 0)
	cache.Set("b", 2, 0)

	if err := cache.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get("a"); err == nil {
		t.Error("Expected deleted key to be gone")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := cache.Get("b"); err == nil {
		t.Error("Expected cleared key to be gone")
	}
}
