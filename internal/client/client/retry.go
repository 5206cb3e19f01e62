package client

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds repeated attempts. Backoff[i] is the delay before
// attempt i+2; the last delay repeats when attempts outnumber delays.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// NoRetry makes a single attempt.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// DefaultRetryPolicy is used for idempotent requests.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Backoff:     []time.Duration{200 * time.Millisecond, 500 * time.Millisecond},
}

// Delay returns the wait before the given retry (0-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if retry >= len(p.Backoff) {
		return p.Backoff[len(p.Backoff)-1]
	}
	return p.Backoff[retry]
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	n := 0
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		d := p.Delay(n)
		n++
		return d, false
	})
	return retry.WithMaxRetries(uint64(attempts-1), next)
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// is exhausted. fn marks errors worth another attempt with Retryable.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, p.backoff(), fn)
}

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	return retry.RetryableError(err)
}
