// Package cache holds the Redis-backed pieces of the service: the
// resolved-identity cache for bearer tokens and the login rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool defaults applied when Options leaves the knobs unset.
const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	poolTimeout         = 4 * time.Second
	connMaxIdleTime     = 5 * time.Minute
)

// Options configures the Redis connection.
type Options struct {
	// URL is a redis:// connection string.
	URL string
	// PoolSize and MinIdleConns tune the connection pool; zero values
	// fall back to the package defaults.
	PoolSize     int
	MinIdleConns int
}

// Cache wraps a Redis client with the operations the service needs.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a ping so a
// bad address fails at startup rather than on the first request.
func New(ctx context.Context, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}

	opt.PoolSize = opts.PoolSize
	if opt.PoolSize <= 0 {
		opt.PoolSize = defaultPoolSize
	}
	opt.MinIdleConns = opts.MinIdleConns
	if opt.MinIdleConns <= 0 {
		opt.MinIdleConns = defaultMinIdleConns
	}
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity. Used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for test setup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
