package database

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultRetryAttempts is the number of tries WithRetry makes.
	DefaultRetryAttempts = 5
	// DefaultRetryDelay is the delay before the second try; it doubles after each failure.
	DefaultRetryDelay = 200 * time.Millisecond
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. WithRetry returns the wrapped
// error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry calls fn until it succeeds or attempts are exhausted, sleeping
// with exponential backoff between tries. Context cancellation stops early.
func WithRetry[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(delay << i)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
