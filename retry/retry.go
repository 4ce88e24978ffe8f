// Package retry runs remote calls under a bounded attempt policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is wrapped by every error returned after the last attempt fails.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy is a bounded retry schedule. The zero value makes a single attempt.
type Policy struct {
	MaxAttempts int
	// Delay before the second attempt; each later attempt waits Step longer.
	Delay time.Duration
	Step  time.Duration
	// Sleep defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns it unwrapped
// without consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Backoff returns the wait before attempt n (1-based, n >= 2).
func (p Policy) Backoff(n int) time.Duration {
	if n < 2 {
		return 0
	}
	return p.Delay + time.Duration(n-2)*p.Step
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs op until it succeeds, returns a Permanent error, the context ends,
// or MaxAttempts is reached.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var last error
	n := p.attempts()
	for attempt := 1; attempt <= n; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt-1, errors.Join(last, err))
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		last = err
		if ctx.Err() != nil {
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, last)
		}
		if attempt < n && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, n, last)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
