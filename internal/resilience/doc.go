// Package resilience provides reliability and fault tolerance patterns for the gateway.
// It includes implementations of circuit breakers and retry logic to keep the
// request path responsive when dependencies degrade.
//
// The package supports:
//   - Circuit breakers for the rate limit store and the tenant resolver
//   - Retry logic with exponential backoff and jitter for startup dependency checks
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.RateLimitStoreConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return store.KeyCount(ctx)
//	})
//
//	retryConfig := retry.UpstreamConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return pinger.Ping(ctx)
//	})
package resilience
