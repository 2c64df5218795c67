package inference

import (
	"context"
	"time"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/metrics"
)

// RetryPolicy bounds retries of transient remote failures with exponential
// backoff. Waits grow as 2^(attempt+1) seconds, so they are non-decreasing
// across a single call.
type RetryPolicy struct {
	MaxAttempts int
	// BaseDelay scales the backoff; 1s in production, small in tests.
	BaseDelay time.Duration
	// Sleep is injectable for tests. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy mirrors the service's historical limits: five attempts
// with 2s, 4s, 8s, 16s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}
}

// Do runs fn until it succeeds, fails permanently, or the attempt bound is
// exhausted. Only transient failures are retried. Context cancellation stops
// the loop immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// 2s, 4s, 8s, ... at the default base delay
			sleep(base * time.Duration(1<<uint(attempt)))
			metrics.IncRemoteRetries()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}
	return err
}
