package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Options controls the backoff loop. Zero values fall back to the defaults
// below, so callers can set only what they need.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ShouldRetry func(error) bool
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = defaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = defaultMaxDelay
	}
	if o.ShouldRetry == nil {
		o.ShouldRetry = IsTransient
	}
	return o
}

// IsTransient is the default classifier: network/timeout failures and
// 5xx-class responses are worth retrying, everything else surfaces at once.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, needle := range []string{
		"network",
		"timeout",
		"econnreset",
		"connection reset",
		"connection refused",
		"500",
		"502",
		"503",
		"504",
	} {
		if strings.Contains(message, needle) {
			return true
		}
	}
	return false
}

// IsTransientStoreError classifies failures from the backing store. It also
// retries throttling and rate-limit responses, but authorization and
// validation failures are programmer or input errors and must surface
// immediately.
func IsTransientStoreError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, needle := range []string{"unauthorized", "not authorized", "forbidden", "validation"} {
		if strings.Contains(message, needle) {
			return false
		}
	}
	if IsTransient(err) {
		return true
	}
	for _, needle := range []string{"temporarily", "throttl", "rate limit"} {
		if strings.Contains(message, needle) {
			return true
		}
	}
	return false
}

// StoreOptions is the policy used around every backing-store call. Store
// operations are the only retry site in the codebase.
func StoreOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		ShouldRetry: IsTransientStoreError,
	}
}

func delayFor(attempt int, base, max time.Duration) time.Duration {
	exponential := float64(base) * math.Pow(2, float64(attempt))
	jitter := rand.Float64() * 0.3 * exponential // up to 30% of the exponential term
	delay := time.Duration(exponential + jitter)
	if delay > max {
		delay = max
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn, retrying with bounded exponential backoff while the classifier
// approves. The last error is returned once attempts are exhausted or the
// error is classified as permanent.
func Do(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		lastAttempt := attempt == opts.MaxAttempts-1
		if lastAttempt || !opts.ShouldRetry(lastErr) {
			return lastErr
		}

		delay := delayFor(attempt, opts.BaseDelay, opts.MaxDelay)
		log.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Int("max_attempts", opts.MaxAttempts).
			Dur("delay", delay).
			Msg("Operation failed, retrying after backoff")
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}
