package circuitbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"microsite-gateway/pkg/ratelimit"
)

// StoreCircuitBreaker wraps a rate limit counter store with circuit breaker
// protection. When the backing store (Redis) degrades, the circuit opens
// and every operation returns ErrOpenState immediately instead of stalling
// the request path; the limiter treats that as a store error and fails open.
type StoreCircuitBreaker struct {
	cb    *CircuitBreaker
	store ratelimit.AtomicCounterStore
}

// Compile-time interface check.
var _ ratelimit.AtomicCounterStore = (*StoreCircuitBreaker)(nil)

// NewStoreCircuitBreaker wraps store with the standard rate limit store
// breaker configuration.
func NewStoreCircuitBreaker(store ratelimit.AtomicCounterStore) *StoreCircuitBreaker {
	return NewStoreCircuitBreakerWithConfig(store, RateLimitStoreConfig())
}

// NewStoreCircuitBreakerWithConfig wraps store with a custom configuration.
func NewStoreCircuitBreakerWithConfig(store ratelimit.AtomicCounterStore, cfg Config) *StoreCircuitBreaker {
	return &StoreCircuitBreaker{
		cb:    New(cfg),
		store: store,
	}
}

// Increment atomically advances the counter through the circuit breaker.
func (scb *StoreCircuitBreaker) Increment(ctx context.Context, key string, window time.Duration) (ratelimit.Record, error) {
	result, err := scb.cb.Execute(func() (interface{}, error) {
		return scb.store.Increment(ctx, key, window)
	})
	if err != nil {
		return ratelimit.Record{}, err
	}
	return result.(ratelimit.Record), nil
}

// Get reads a counter record through the circuit breaker.
func (scb *StoreCircuitBreaker) Get(ctx context.Context, key string) (ratelimit.Record, bool, error) {
	type getResult struct {
		record ratelimit.Record
		found  bool
	}

	result, err := scb.cb.Execute(func() (interface{}, error) {
		rec, found, err := scb.store.Get(ctx, key)
		return getResult{record: rec, found: found}, err
	})
	if err != nil {
		return ratelimit.Record{}, false, err
	}
	res := result.(getResult)
	return res.record, res.found, nil
}

// Set writes a counter record through the circuit breaker.
func (scb *StoreCircuitBreaker) Set(ctx context.Context, key string, record ratelimit.Record) error {
	_, err := scb.cb.Execute(func() (interface{}, error) {
		return nil, scb.store.Set(ctx, key, record)
	})
	return err
}

// Delete removes a counter record through the circuit breaker.
func (scb *StoreCircuitBreaker) Delete(ctx context.Context, key string) error {
	_, err := scb.cb.Execute(func() (interface{}, error) {
		return nil, scb.store.Delete(ctx, key)
	})
	return err
}

// Sweep removes records whose window ended at or before now.
func (scb *StoreCircuitBreaker) Sweep(ctx context.Context, now time.Time) error {
	_, err := scb.cb.Execute(func() (interface{}, error) {
		return nil, scb.store.Sweep(ctx, now)
	})
	return err
}

// KeyCount reports the number of tracked identifiers.
func (scb *StoreCircuitBreaker) KeyCount(ctx context.Context) (int, error) {
	result, err := scb.cb.Execute(func() (interface{}, error) {
		return scb.store.KeyCount(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// State returns the current state of the circuit breaker.
func (scb *StoreCircuitBreaker) State() gobreaker.State {
	return scb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (scb *StoreCircuitBreaker) IsOpen() bool {
	return scb.cb.IsOpen()
}
