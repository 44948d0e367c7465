package resilience

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/kbukum/scoutkit/errors"
)

// RateLimiterConfig configures a token bucket limiter.
type RateLimiterConfig struct {
	// Name identifies the limiter in errors and logs, typically the
	// provider name.
	Name string

	// Rate is the sustained number of requests per second.
	Rate float64

	// Burst is the bucket capacity, the number of requests that may be
	// issued at once after an idle period.
	Burst int

	// OnLimit is called when a request is rejected or has to wait.
	OnLimit func(name string)
}

func (c *RateLimiterConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Rate <= 0 {
		c.Rate = 10
	}
	if c.Burst <= 0 {
		c.Burst = int(c.Rate)
		if c.Burst < 1 {
			c.Burst = 1
		}
	}
}

// RateLimiter is a token bucket. Tokens refill continuously at Rate per
// second up to Burst. Safe for concurrent use.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	cfg.ApplyDefaults()
	return &RateLimiter{
		cfg:        cfg,
		tokens:     float64(cfg.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether a single request may proceed now, consuming a
// token if so.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN reports whether n requests may proceed now.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}
	if rl.cfg.OnLimit != nil {
		rl.cfg.OnLimit(rl.cfg.Name)
	}
	return false
}

// Wait blocks until a token is available or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN blocks until n tokens are available or the context is done.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	if n > rl.cfg.Burst {
		return apperrors.RateLimited(rl.cfg.Name)
	}

	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens >= float64(n) {
			rl.tokens -= float64(n)
			rl.mu.Unlock()
			return nil
		}
		missing := float64(n) - rl.tokens
		wait := time.Duration(missing / rl.cfg.Rate * float64(time.Second))
		rl.mu.Unlock()

		if rl.cfg.OnLimit != nil {
			rl.cfg.OnLimit(rl.cfg.Name)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Execute waits for a token, then runs fn.
func Execute[T any](ctx context.Context, rl *RateLimiter, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := rl.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return fn(ctx)
}

// Tokens returns the current token count, for tests and diagnostics.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// refill adds tokens based on elapsed time. Caller must hold mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.cfg.Rate
	if max := float64(rl.cfg.Burst); rl.tokens > max {
		rl.tokens = max
	}
}
