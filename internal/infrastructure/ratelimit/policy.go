package ratelimit

import (
	"context"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
)

// PolicyLimiter absorbs backend errors according to the configured policy.
// Fail-open (the default) lets requests through when the counter backend is
// unavailable, trading strictness for availability; fail-closed rejects them.
type PolicyLimiter struct {
	inner      Limiter
	failClosed bool
	log        observability.Logger
	decisions  observability.Counter
}

func NewPolicyLimiter(inner Limiter, failClosed bool, log observability.Logger, metrics observability.Metrics) *PolicyLimiter {
	if log == nil {
		log = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &PolicyLimiter{
		inner:      inner,
		failClosed: failClosed,
		log:        log.With(observability.F("component", "ratelimit")),
		decisions:  metrics.Counter(observability.MRateLimitDecisions),
	}
}

// Allow never returns an error: backend failures become a policy decision.
func (p *PolicyLimiter) Allow(ctx context.Context, key string) Decision {
	d, err := p.inner.Allow(ctx, key)
	if err != nil {
		outcome := "error_open"
		d = Decision{Allowed: true}
		if p.failClosed {
			outcome = "error_closed"
			d = Decision{Allowed: false, RetryAfter: 1}
		}
		p.log.Warn("rate_limit_backend_error",
			observability.F("error", err.Error()),
			observability.F("fail_closed", p.failClosed),
		)
		p.decisions.Add(1, observability.L("outcome", outcome))
		return d
	}

	outcome := "allowed"
	if !d.Allowed {
		outcome = "limited"
	}
	p.decisions.Add(1, observability.L("outcome", outcome))
	return d
}

// Reset passes through for tests.
func (p *PolicyLimiter) Reset(ctx context.Context, key string) error {
	return p.inner.Reset(ctx, key)
}
