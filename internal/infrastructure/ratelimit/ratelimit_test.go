package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewMemoryLimiter(Config{Window: time.Minute, Limit: 3},
		WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.GreaterOrEqual(t, d.RetryAfter, 1)
	assert.LessOrEqual(t, d.RetryAfter, 60)

	// Another key has its own budget.
	d, err = l.Allow(ctx, "c2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// A new window starts after expiry.
	now = now.Add(time.Minute + time.Second)
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterReset(t *testing.T) {
	l := NewMemoryLimiter(Config{Window: time.Minute, Limit: 1})
	ctx := context.Background()

	d, err := l.Allow(ctx, "c1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	require.NoError(t, l.Reset(ctx, "c1"))
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	now := time.Unix(1_700_000_000, 0)
	l := NewRedisLimiter(client, Config{Window: time.Minute, Limit: 2}, "test:",
		WithRedisClock(func() time.Time { return now }))
	ctx := context.Background()

	d, err := l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	now = now.Add(30 * time.Second)
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	now = now.Add(10 * time.Second)
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	// The oldest entry leaves the window 20s from now.
	assert.Equal(t, 20, d.RetryAfter)

	// Sliding: once the first entry ages out, one slot opens even though the
	// second is still inside the window.
	now = now.Add(25 * time.Second)
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisLimiterReset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(client, Config{Window: time.Minute, Limit: 1}, "test:")
	ctx := context.Background()

	d, err := l.Allow(ctx, "c1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	require.NoError(t, l.Reset(ctx, "c1"))
	d, err = l.Allow(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("backend down")
}

func (failingLimiter) Reset(context.Context, string) error { return nil }

func TestPolicyLimiterFailOpen(t *testing.T) {
	p := NewPolicyLimiter(failingLimiter{}, false, nil, nil)
	d := p.Allow(context.Background(), "c1")
	assert.True(t, d.Allowed)
}

func TestPolicyLimiterFailClosed(t *testing.T) {
	p := NewPolicyLimiter(failingLimiter{}, true, nil, nil)
	d := p.Allow(context.Background(), "c1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.RetryAfter)
}

func TestPolicyLimiterPassesDecisionsThrough(t *testing.T) {
	inner := NewMemoryLimiter(Config{Window: time.Minute, Limit: 1})
	p := NewPolicyLimiter(inner, true, nil, nil)
	ctx := context.Background()

	assert.True(t, p.Allow(ctx, "c1").Allowed)
	assert.False(t, p.Allow(ctx, "c1").Allowed)

	require.NoError(t, p.Reset(ctx, "c1"))
	assert.True(t, p.Allow(ctx, "c1").Allowed)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, 5, cfg.Limit)
}
