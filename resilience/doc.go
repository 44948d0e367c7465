// Package resilience provides retry with exponential backoff and token
// bucket rate limiting for calls against upstream chat backends.
//
// Retry wraps an operation and re-runs it on transient failures
// (connection errors, timeouts, rate-limit responses) with jittered
// exponential backoff:
//
//	resp, err := resilience.Retry(ctx, resilience.RetryConfig{
//		MaxAttempts:    3,
//		InitialBackoff: 500 * time.Millisecond,
//	}, func(ctx context.Context) (*Response, error) {
//		return client.Do(ctx, req)
//	})
//
// RateLimiter throttles outgoing request bursts so a provider is not
// hammered into returning 429s in the first place:
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5, Burst: 10})
//	if err := rl.Wait(ctx); err != nil {
//		return err
//	}
package resilience
