package resilience

import (
	"context"
	"math/rand"
	"time"

	apperrors "github.com/kbukum/scoutkit/errors"
)

// RetryConfig controls retry behavior for upstream backend calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the delay after each attempt.
	BackoffFactor float64

	// Jitter adds up to this fraction of random variation to each delay.
	// A value of 0.2 means the delay varies by +/-20%.
	Jitter float64

	// RetryIf decides whether an error is retryable. Defaults to
	// DefaultRetryIf (retryable AppError codes: connection failures,
	// timeouts, rate limits).
	RetryIf func(error) bool

	// OnRetry is called before each retry with the attempt number
	// (1-based) and the error that caused it.
	OnRetry func(attempt int, err error)
}

// ApplyDefaults fills unset fields with sane defaults.
func (c *RetryConfig) ApplyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.RetryIf == nil {
		c.RetryIf = DefaultRetryIf
	}
}

// DefaultRetryIf retries on errors whose code is marked retryable
// (connection failures, timeouts, rate limits). Context cancellation
// is never retried.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// Retry runs fn until it succeeds, the attempts are exhausted, or the
// error is not retryable. The zero value of T is returned alongside the
// last error on failure.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg.ApplyDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || !cfg.RetryIf(err) {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		delay := calculateBackoff(cfg, attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// RetryFunc is Retry for operations with no result value.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func calculateBackoff(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialBackoff)
	for i := 1; i < attempt; i++ {
		delay *= cfg.BackoffFactor
	}
	if max := float64(cfg.MaxBackoff); delay > max {
		delay = max
	}
	if cfg.Jitter > 0 {
		// Spread delays so concurrent retries do not stampede.
		delta := delay * cfg.Jitter
		delay = delay - delta + rand.Float64()*2*delta
	}
	return time.Duration(delay)
}
