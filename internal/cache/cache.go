// Package cache holds the JSON read-through cache used for list endpoints.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"blogapi/internal/config"
)

// Keys for cached collections.
const (
	KeyCategories = "blogapi:categories"
	KeyTags       = "blogapi:tags"
)

// Cache stores JSON encoded values by key.
type Cache interface {
	// GetJSON decodes the cached value into dest and reports whether it was present.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Del(ctx context.Context, key string) error
	Close() error
}

// RedisCache is a Cache on top of a Redis server with one TTL for every key.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to cfg.Addr and verifies it answers PING.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &RedisCache{client: c, ttl: time.Duration(cfg.TTLSec) * time.Second}, nil
}

func (r *RedisCache) Close() error { return r.client.Close() }

func (r *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

func (r *RedisCache) SetJSON(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, r.ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Noop never stores anything; every read is a miss.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) SetJSON(context.Context, string, any) error         { return nil }
func (Noop) Del(context.Context, string) error                  { return nil }
func (Noop) Close() error                                       { return nil }
