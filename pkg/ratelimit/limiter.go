package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Limiter applies one Policy to identifiers using a CounterStore.
//
// Check never returns an error: a store failure is logged, recorded in
// metrics, and the request is allowed through (fail-open). Availability is
// preferred over strict counting for a single edge component; exact
// cross-process counting requires the Redis-backed store.
type Limiter struct {
	policy  Policy
	store   CounterStore
	clock   Clock
	metrics Metrics
	class   string
}

// NewLimiter creates a limiter for one traffic class.
// A nil clock defaults to the system clock, nil metrics to a no-op collector.
func NewLimiter(class string, policy Policy, store CounterStore, clock Clock, metrics Metrics) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Limiter{
		policy:  policy,
		store:   store,
		clock:   clock,
		metrics: metrics,
		class:   class,
	}
}

// Policy returns the limiter's policy.
func (l *Limiter) Policy() Policy { return l.policy }

// Class returns the traffic class this limiter guards.
func (l *Limiter) Class() string { return l.class }

// Check records one request for the identifier and decides whether it is
// within the quota.
//
// Fixed-window semantics: the first request from an identifier (or the first
// after its window expired) starts a fresh window with count 1. Every later
// request inside the window increments the count, including requests over the
// quota, so the stored count can exceed MaxRequests; the surfaced Remaining
// is clamped at zero.
//
// Each call also sweeps expired records from the store, keeping memory
// bounded under many distinct identifiers without a dedicated janitor.
func (l *Limiter) Check(ctx context.Context, identifier string) Decision {
	start := time.Now()
	defer func() {
		l.metrics.RecordCheckDuration(l.class, time.Since(start))
	}()

	now := l.clock.Now()

	if err := l.store.Sweep(ctx, now); err != nil {
		slog.Warn("rate limit sweep failed",
			slog.String("class", l.class),
			slog.String("error", err.Error()))
	}

	var (
		rec Record
		err error
	)
	if atomicStore, ok := l.store.(AtomicCounterStore); ok {
		rec, err = atomicStore.Increment(ctx, identifier, l.policy.Window)
	} else {
		rec, err = l.incrementNonAtomic(ctx, identifier, now)
	}
	if err != nil {
		slog.Error("rate limit store unavailable, failing open",
			slog.String("class", l.class),
			slog.String("key", identifier),
			slog.String("error", err.Error()))
		l.metrics.RecordStoreError(l.class)
		l.metrics.RecordAllowed(l.class)
		return allowedDecision(identifier, l.class, l.policy.MaxRequests, l.policy.MaxRequests-1, now.Add(l.policy.Window))
	}

	if n, cerr := l.store.KeyCount(ctx); cerr == nil {
		l.metrics.SetActiveKeys(l.class, n)
	}

	if rec.Count > l.policy.MaxRequests {
		l.metrics.RecordDenied(l.class)
		return deniedDecision(identifier, l.class, l.policy.MaxRequests, rec.ResetAt, now)
	}

	l.metrics.RecordAllowed(l.class)
	return allowedDecision(identifier, l.class, l.policy.MaxRequests, l.policy.MaxRequests-rec.Count, rec.ResetAt)
}

// incrementNonAtomic is the get/set fallback for stores without Increment.
// Concurrent checks for the same key can under-count on this path.
func (l *Limiter) incrementNonAtomic(ctx context.Context, identifier string, now time.Time) (Record, error) {
	rec, ok, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Record{}, err
	}
	if !ok || rec.Expired(now) {
		rec = Record{Count: 1, ResetAt: now.Add(l.policy.Window)}
	} else {
		rec.Count++
	}
	if err := l.store.Set(ctx, identifier, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
