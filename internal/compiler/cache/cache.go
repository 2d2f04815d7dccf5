package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache
	Clear(ctx context.Context) error

	// Exists checks if a key exists in the cache
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the backend
	Close() error
}

// Backend names accepted in configuration
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL is the default time-to-live for cached items
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 24 * time.Hour,
		Prefix:     "derivekit:",
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	_, ok := err.(ErrCacheMiss)
	return ok
}

// Settings selects and configures a backend
type Settings struct {
	Backend  string
	RedisURL string
	Config   Config
}

// Open creates the configured backend. The redis backend is probed with a
// PING so a bad address fails here instead of on every lookup.
func Open(ctx context.Context, s Settings, logger *zap.Logger) (Cache, error) {
	switch s.Backend {
	case "", BackendMemory:
		logger.Debug("using memory cache", zap.Duration("ttl", s.Config.DefaultTTL))
		return NewMemoryCacheWithConfig(s.Config), nil
	case BackendRedis:
		rc, err := NewRedisCacheFromURL(ctx, s.RedisURL, s.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		logger.Debug("using redis cache", zap.String("prefix", s.Config.Prefix))
		return rc, nil
	case BackendNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)",
			s.Backend, BackendMemory, BackendRedis, BackendNone)
	}
}

// Noop is a cache that never stores anything
type Noop struct{}

func (Noop) Get(_ context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss{Key: key}
}

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Clear(context.Context) error { return nil }

func (Noop) Exists(context.Context, string) (bool, error) { return false, nil }

func (Noop) Close() error { return nil }
