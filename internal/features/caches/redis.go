package caches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements the cache interface backed by a Redis server.
// Values are JSON-encoded on the wire.
type RedisCache struct {
	name      string
	client    *redis.Client
	keyPrefix string
}

// NewRedis creates a Redis-backed cache and verifies connectivity.
func NewRedis(name, addr string) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		name:      name,
		client:    client,
		keyPrefix: name + ":",
	}, nil
}

func (rc *RedisCache) Name() string {
	return rc.name
}

func (rc *RedisCache) Get(key string) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := rc.client.Get(ctx, rc.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if err != nil {
		return nil, err
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return value, nil
}

func (rc *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return rc.client.Set(ctx, rc.keyPrefix+key, data, ttl).Err()
}

func (rc *RedisCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return rc.client.Del(ctx, rc.keyPrefix+key).Err()
}

func (rc *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := rc.client.Scan(ctx, 0, rc.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
