// Package ratelimit provides the sliding-window request limiter used in
// front of checkout. Limiters are constructed once per process and injected;
// there is no package-level state.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a limiter check. RetryAfter is a hint in
// seconds, meaningful only when Allowed is false.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter int
}

// Limiter counts requests per key over a window. Reset exists so tests can
// return a key to a clean slate.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// Config bounds a window.
type Config struct {
	Window time.Duration
	Limit  int
}

// withDefaults fills the zero value in: 5 checkout attempts per minute.
func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Limit <= 0 {
		c.Limit = 5
	}
	return c
}

func retryAfterSeconds(until time.Duration) int {
	secs := int(until.Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
