// Package retryx runs an operation under a bounded retry policy with a
// linearly growing delay between attempts.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number to get the wait before
	// the next attempt: BaseDelay after the first failure, 2×BaseDelay after
	// the second, and so on.
	BaseDelay time.Duration
}

// DefaultPolicy is used for storage writes: 3 attempts, 200ms × attempt.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * p.BaseDelay
}

func (p Policy) backoff() retry.Backoff {
	attempt := 0
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return p.Delay(attempt), false
	})

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), b)
}

// Do calls fn until it succeeds, returns an error for which retryable is
// false, the attempts are exhausted or ctx is done. fn receives the 1-based
// attempt number. The last error from fn is returned unwrapped.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	attempt := 0
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
