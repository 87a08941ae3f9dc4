package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cuentas/internal/infrastructure/metrics"
	"github.com/iho/cuentas/internal/usecase"
)

// QuoteCache implements usecase.Cache using Redis. Keys are namespaced so
// one Redis can serve several ledgers.
type QuoteCache struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewQuoteCache creates a new QuoteCache. An empty namespace defaults to
// "cuentas".
func NewQuoteCache(client *redis.Client, namespace string) *QuoteCache {
	if namespace == "" {
		namespace = "cuentas"
	}
	return &QuoteCache{
		client: client,
		prefix: namespace + ":",
	}
}

// WithMetrics records every Redis call of the cache in m.
func (c *QuoteCache) WithMetrics(m *metrics.Metrics) *QuoteCache {
	c.metrics = m
	return c
}

// Get retrieves a value by key. Absent keys yield usecase.ErrCacheMiss.
func (c *QuoteCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	observe(c.metrics, "cache_get", err)
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrCacheMiss
	}
	return val, err
}

// Set stores a value with TTL.
func (c *QuoteCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	observe(c.metrics, "cache_set", err)
	return err
}

// Delete removes a key.
func (c *QuoteCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	observe(c.metrics, "cache_delete", err)
	return err
}
