package util

import (
	"context"
	"errors"
	"time"
)

// Backoff is the wait before attempt n+1, doubled after every failure.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff is used for broker, database and object store connects.
var DefaultBackoff = Backoff{Initial: 500 * time.Millisecond, Max: 10 * time.Second}

func (b Backoff) delay(attempt int) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	d := b.Initial
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	return d
}

// RetryWithContext calls fn up to maxTries times until it returns a nil
// error, sleeping according to backoff between attempts. If maxTries <= 0 it
// defaults to 1. Context errors are returned immediately, otherwise the last
// error is returned.
func RetryWithContext[T any](
	ctx context.Context,
	maxTries int,
	backoff Backoff,
	fn func(context.Context) (T, error),
) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if i > 0 {
			timer := time.NewTimer(backoff.delay(i - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErrWithContext is RetryWithContext for functions without a result.
func RetryErrWithContext(ctx context.Context, maxTries int, backoff Backoff, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, maxTries, backoff, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
