package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the limiter with the shared Redis instance so multiple
// replicas see the same counters.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a store namespaced under prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Incr bumps the counter for key, setting the window TTL only when the key is
// created so the window stays fixed rather than sliding.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	full := s.prefix + ":" + key

	n, err := s.rdb.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, full, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
