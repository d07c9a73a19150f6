// Package ratelimit provides framework-agnostic fixed-window rate limiting.
//
// A Limiter wraps a pluggable CounterStore with a Policy (window + quota) and
// produces a Decision per identifier. Stores can be in-memory (single
// process) or Redis-backed (shared across gateway instances).
package ratelimit

import (
	"context"
	"time"
)

// CounterStore defines the interface for storing per-identifier window records.
//
// Implementations must be safe for concurrent use. A record whose window has
// expired is logically absent: callers treat it as missing and implementations
// are free to delete it at any point.
type CounterStore interface {
	// Get retrieves the record for the given key.
	// The second return value is false when no record exists.
	Get(ctx context.Context, key string) (Record, bool, error)

	// Set stores the record for the given key, overwriting any existing one.
	Set(ctx context.Context, key string, rec Record) error

	// Delete removes the record for the given key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Sweep removes all records whose window ended at or before now.
	// It bounds memory growth under many distinct identifiers and is called
	// by the Limiter on every check.
	Sweep(ctx context.Context, now time.Time) error

	// KeyCount returns the number of live records, for monitoring.
	KeyCount(ctx context.Context) (int, error)
}

// AtomicCounterStore extends CounterStore with a single-roundtrip
// increment-or-start-window operation.
//
// The check and the increment must happen atomically so that concurrent
// requests for the same key cannot under-count. Stores that support it
// (the in-memory store, Redis via INCR+PEXPIRE) are preferred by the Limiter
// over the get/set fallback path.
type AtomicCounterStore interface {
	CounterStore

	// Increment adds one request to the key's current window, starting a new
	// window of the given duration when the key is absent or its window has
	// expired. It returns the record after the increment.
	Increment(ctx context.Context, key string, window time.Duration) (Record, error)
}

// Clock abstracts time for testing window arithmetic with fake clocks.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Metrics records rate limiting outcomes.
//
// Implementations can use Prometheus or a no-op collector. The class label is
// the traffic class the limiter guards ("auth", "payment", "api", "public").
type Metrics interface {
	// RecordAllowed records a check that permitted the request.
	RecordAllowed(class string)

	// RecordDenied records a check that rejected the request.
	RecordDenied(class string)

	// RecordCheckDuration records how long a rate limit check took.
	RecordCheckDuration(class string, d time.Duration)

	// RecordStoreError records a store failure (the limiter fails open).
	RecordStoreError(class string)

	// SetActiveKeys records the number of live records in the store.
	SetActiveKeys(class string, n int)
}
