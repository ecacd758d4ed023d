// Package resilience protects calls to the admin API.
//
// The patterns compose through an Executor, outermost first:
//
//   - Rate limiter: token bucket on golang.org/x/time/rate.
//   - Bulkhead: bounded concurrency on golang.org/x/sync/semaphore.
//   - Retry: backoff for transient failures. Only idempotent calls retry.
//   - Circuit breaker: stops calling a failing API until it recovers.
//   - Timeout: per-attempt deadline.
//
// Errors report whether they are transient through the Transient interface;
// only transient errors are retried or counted by the circuit breaker.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 20, Burst: 5})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return doRequest(ctx)
//	})
package resilience
