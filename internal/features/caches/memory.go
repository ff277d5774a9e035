package caches

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem represents an item in the cache with TTL
type cacheItem struct {
	value  interface{}
	expiry time.Time
}

// MemoryCache implements an in-memory cache with LRU eviction
type MemoryCache struct {
	name     string
	lruCache *lru.Cache[string, *cacheItem]
	mu       sync.Mutex
}

// NewMemory creates a new in-memory cache
func NewMemory(name string, maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	cache, _ := lru.New[string, *cacheItem](maxSize)
	return &MemoryCache{
		name:     name,
		lruCache: cache,
	}
}

func (mc *MemoryCache) Name() string {
	return mc.name
}

func (mc *MemoryCache) Get(key string) (interface{}, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, exists := mc.lruCache.Get(key)
	if !exists {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	if !item.expiry.IsZero() && time.Now().After(item.expiry) {
		mc.lruCache.Remove(key)
		return nil, fmt.Errorf("key expired: %s", key)
	}

	return item.value, nil
}

func (mc *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiry = time.Now().Add(ttl)
	}

	// LRU cache handles eviction automatically
	mc.lruCache.Add(key, item)
	return nil
}

func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.lruCache.Remove(key)
	return nil
}

func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.lruCache.Purge()
	return nil
}

func (mc *MemoryCache) Close() error {
	return mc.Clear()
}
