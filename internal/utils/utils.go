package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// RetryPolicy bounds the attempts made by Retry.
type RetryPolicy struct {
	Attempts int
	// Delay is multiplied by the attempt number before each retry.
	Delay     time.Duration
	Retryable func(error) bool
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts || (policy.Retryable != nil && !policy.Retryable(err)) {
			break
		}

		if waitErr := WaitFor(ctx, policy.Delay*time.Duration(attempt)); waitErr != nil {
			return waitErr
		}
	}

	return err
}
