package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

// observe counts a Redis operation. Misses are not errors.
func observe(m *metrics.Metrics, operation string, err error) {
	if m == nil {
		return
	}
	m.RedisOperations.WithLabelValues(operation).Inc()
	if err != nil && !errors.Is(err, redis.Nil) {
		m.RedisErrors.WithLabelValues(operation).Inc()
	}
}
