package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSleeps(out *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*out = append(*out, d)
		return nil
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	var sleeps []time.Duration
	var retried []int
	p := Policy{
		MaxAttempts: 5,
		Delay:       4 * time.Second,
		Sleep:       recordSleeps(&sleeps),
		OnRetry:     func(n int, _ error) { retried = append(retried, n) },
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, sleeps)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoExhausts(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{MaxAttempts: 3, Delay: time.Second, Step: time.Second, Sleep: recordSleeps(&sleeps)}
	cause := errors.New("status 503")

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestDoPermanentStopsEarly(t *testing.T) {
	cause := errors.New("bad request")
	calls := 0
	err := Policy{MaxAttempts: 8, Sleep: recordSleeps(new([]time.Duration))}.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, cause, err)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Nil(t, Permanent(nil))
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxAttempts: 8, Delay: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("timeout")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestZeroPolicyMakesOneAttempt(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), Policy{MaxAttempts: 2, Sleep: recordSleeps(new([]time.Duration))},
		func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("first")
			}
			return 42, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Value(context.Background(), Policy{MaxAttempts: 1}, func(context.Context) (int, error) {
		return 7, errors.New("fail")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, v)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}
