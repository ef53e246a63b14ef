package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("record does not satisfy constraint")
	calls := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "a non-retryable error must not be retried")
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := errors.New("network timeout")
	calls := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	opts := Options{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}
	err := Do(ctx, opts, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("503 service unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during backoff must stop the loop")
}

func TestDoCustomClassifier(t *testing.T) {
	calls := 0
	opts := fastOptions()
	opts.ShouldRetry = func(error) bool { return false }

	err := Do(context.Background(), opts, func(ctx context.Context) error {
		calls++
		return errors.New("network timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network failure", errors.New("network is unreachable"), true},
		{"timeout", errors.New("i/o timeout"), true},
		{"econnreset", errors.New("read: ECONNRESET"), true},
		{"bad gateway", errors.New("unexpected status 502"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"validation failure", errors.New("field title is required"), false},
		{"not found", errors.New("record not found"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsTransient(test.err))
		})
	}
}

func TestIsTransientStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"throttled", errors.New("request throttled"), true},
		{"rate limited", errors.New("rate limit exceeded"), true},
		{"temporarily unavailable", errors.New("service temporarily unavailable"), true},
		{"plain transient", errors.New("connection refused"), true},
		{"unauthorized", errors.New("unauthorized"), false},
		{"not authorized", errors.New("user is not authorized to perform this operation"), false},
		{"forbidden", errors.New("403 forbidden"), false},
		{"validation", errors.New("validation error on field answers"), false},
		// Authorization wins even when the message also looks transient.
		{"unauthorized with timeout wording", errors.New("unauthorized: token timeout"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsTransientStoreError(test.err))
		})
	}
}

func TestDelayForIsBoundedByMax(t *testing.T) {
	base := 500 * time.Millisecond
	max := 2 * time.Second
	for attempt := 0; attempt < 10; attempt++ {
		delay := delayFor(attempt, base, max)
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		assert.LessOrEqual(t, delay, max)
	}
}

func TestStoreOptionsDefaults(t *testing.T) {
	opts := StoreOptions().withDefaults()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, opts.BaseDelay)
	assert.Equal(t, 10*time.Second, opts.MaxDelay)
	assert.False(t, opts.ShouldRetry(errors.New("validation error")))
	assert.True(t, opts.ShouldRetry(errors.New("connection reset")))
}
