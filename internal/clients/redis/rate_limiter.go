package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type CounterStore interface {
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd
	TTL(ctx context.Context, key string) *goredis.DurationCmd
}

type rateLimiter struct {
	log    *logger.Logger
	rdb    CounterStore
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(log *logger.Logger, rdb CounterStore, prefix string, limit int, window time.Duration) RateLimiter {
	if rdb == nil || limit <= 0 {
		return NopRateLimiter()
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		log:    log.With("service", "RateLimiter", "scope", prefix),
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (r *rateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := fmt.Sprintf("ratelimit:%s:%s", r.prefix, key)
	n, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, k, r.window).Err(); err != nil {
			r.log.Warn("rate limit expire failed", "error", err)
		}
	}
	if n <= r.limit {
		return true, 0, nil
	}
	ttl, err := r.rdb.TTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		ttl = r.window
	}
	return false, ttl, nil
}

type nopRateLimiter struct{}

func NopRateLimiter() RateLimiter { return nopRateLimiter{} }

func (nopRateLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}
