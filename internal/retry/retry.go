// Package retry runs an operation under an explicit retry policy.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried. MaxAttempts counts every
// call including the first; values below 1 are treated as 1.
type Policy struct {
	MaxAttempts int
	// Retryable reports whether a failed attempt may be retried. A nil
	// Retryable retries every error.
	Retryable func(err error) bool
	// Backoff returns the wait after the given zero-based failed attempt.
	Backoff func(attempt int) time.Duration
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// Exponential returns a backoff that starts at base and doubles per attempt.
func Exponential(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return base * (1 << uint(attempt))
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// policy's attempts are used up. The error from the last attempt is
// returned unchanged. Cancelling ctx stops further attempts.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, lastErr
		}
		if attempt == attempts-1 {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}
		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
