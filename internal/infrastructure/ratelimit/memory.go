package ratelimit

import (
	"context"
	"sync"
	"time"
)

const memoryMaxKeys = 10000

type windowRecord struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter kept in process memory. State is
// lost on restart, which is acceptable for a best-effort control. It serves
// as the fallback when no Redis is configured.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*windowRecord
}

type MemoryOption func(*MemoryLimiter)

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

func NewMemoryLimiter(cfg Config, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		windows: make(map[string]*windowRecord),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.windows[key]
	if !ok || !rec.resetAt.After(now) {
		rec = &windowRecord{resetAt: now.Add(l.cfg.Window)}
		l.windows[key] = rec
		l.sweep(now)
	}
	rec.count++

	if rec.count > l.cfg.Limit {
		return Decision{
			Allowed:    false,
			RetryAfter: retryAfterSeconds(rec.resetAt.Sub(now)),
		}, nil
	}
	return Decision{Allowed: true, Remaining: l.cfg.Limit - rec.count}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// sweep drops expired windows once the map grows large. Called with the
// mutex held.
func (l *MemoryLimiter) sweep(now time.Time) {
	if len(l.windows) <= memoryMaxKeys {
		return
	}
	for k, rec := range l.windows {
		if !rec.resetAt.After(now) {
			delete(l.windows, k)
		}
	}
}
