package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter implements sliding-window limiting on a Redis sorted set:
// one member per request, scored by timestamp. Entries older than the window
// are trimmed before counting, so the window slides instead of snapping to
// fixed boundaries.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	prefix string
	now    func() time.Time
}

type RedisOption func(*RedisLimiter)

// WithRedisClock overrides the time source.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(l *RedisLimiter) { l.now = now }
}

func NewRedisLimiter(client *redis.Client, cfg Config, prefix string, opts ...RedisOption) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	l := &RedisLimiter{
		client: client,
		cfg:    cfg.withDefaults(),
		prefix: prefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Add(-l.cfg.Window)
	redisKey := l.prefix + key

	minScore := strconv.FormatInt(windowStart.UnixMicro(), 10)

	if err := l.client.ZRemRangeByScore(ctx, redisKey, "0", minScore).Err(); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: trim window: %w", err)
	}

	count, err := l.client.ZCount(ctx, redisKey, minScore, "+inf").Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: count window: %w", err)
	}

	if count >= int64(l.cfg.Limit) {
		retryAfter := l.cfg.Window
		// The oldest entry's expiry bounds how long the caller must wait.
		oldest, err := l.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) == 1 {
			oldestAt := time.UnixMicro(int64(oldest[0].Score))
			retryAfter = oldestAt.Add(l.cfg.Window).Sub(now)
		}
		return Decision{
			Allowed:    false,
			RetryAfter: retryAfterSeconds(retryAfter),
		}, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := l.client.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: member,
	}).Err(); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: record request: %w", err)
	}
	// Expire stale keys well past the window so idle clients cost nothing.
	l.client.Expire(ctx, redisKey, 2*l.cfg.Window)

	return Decision{Allowed: true, Remaining: l.cfg.Limit - int(count) - 1}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
