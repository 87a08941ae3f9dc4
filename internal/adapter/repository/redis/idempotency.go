package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

const pendingMarker = "processing"

// IdempotencyStore remembers the responses of mutating HTTP requests by
// their Idempotency-Key.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// WithMetrics records every Redis call of the store in m.
func (s *IdempotencyStore) WithMetrics(m *metrics.Metrics) *IdempotencyStore {
	s.metrics = m
	return s
}

// Reserve claims key for a new request. When the key was already used it
// returns the stored response, or inProgress when the first request has not
// finished yet.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (stored []byte, inProgress bool, err error) {
	fullKey := s.prefix + key

	// The key may expire between SetNX and Get; one more round settles it.
	for range 2 {
		set, err := s.client.SetNX(ctx, fullKey, pendingMarker, ttl).Result()
		observe(s.metrics, "idempotency_reserve", err)
		if err != nil {
			return nil, false, err
		}
		if set {
			return nil, false, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		observe(s.metrics, "idempotency_get", err)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if string(existing) == pendingMarker {
			return nil, true, nil
		}
		return existing, false, nil
	}

	return nil, true, nil
}

// Complete stores the final response of key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, s.prefix+key, response, ttl).Err()
	observe(s.metrics, "idempotency_complete", err)
	return err
}

// Release drops key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	observe(s.metrics, "idempotency_release", err)
	return err
}
