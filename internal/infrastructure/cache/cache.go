package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores string values with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Type() string
}

// Config selects and sizes a cache backend.
type Config struct {
	Type      string
	RedisURL  string
	KeyPrefix string
	MaxSize   int
	TTL       time.Duration
}

// New builds the cache backend named by cfg.Type.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "redis":
		return NewRedisCache(cfg.RedisURL, cfg.KeyPrefix)
	case "memory":
		return NewMemoryCache(cfg.MaxSize, cfg.TTL)
	case "noop":
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
