package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient provider failures with exponential
// backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p so that each Generate makes up to cfg.MaxAttempts
// attempts.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	resampled := false

	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt+1 >= attempts || !retryable(err, &resampled) {
			return nil, err
		}
		if err := sleepCtx(ctx, r.backoff(attempt, err)); err != nil {
			return nil, err
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryable reports whether err is worth another attempt. Outages are
// retried until attempts run out. A schema miss gets one more sample;
// a truncated answer would be truncated again.
func retryable(err error, resampled *bool) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch KindOf(err) {
	case KindUnavailable:
		return true
	case KindMalformed:
		var maxTok *ErrMaxTokensExceeded
		if errors.As(err, &maxTok) || *resampled {
			return false
		}
		*resampled = true
		return true
	default:
		return false
	}
}

// backoff returns the wait before the attempt after attempt. A rate
// limit's RetryAfter wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := min(float64(r.config.InitialWait)*math.Pow(mult, float64(attempt)), float64(r.config.MaxWait))
	d *= 0.8 + 0.4*rand.Float64() // ±20%
	return time.Duration(max(d, 0))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
