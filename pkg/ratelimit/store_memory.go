package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore is a thread-safe in-memory implementation of
// AtomicCounterStore backed by a plain map.
//
// Expired records are removed lazily by Sweep, which the Limiter invokes on
// every check, so memory is bounded to roughly one record per identifier seen
// within one window. It is the default store for single-process deployments;
// multi-instance deployments should use RedisCounterStore instead.
type MemoryCounterStore struct {
	mu      sync.Mutex
	records map[string]Record
	clock   Clock
}

// NewMemoryCounterStore creates an empty in-memory store.
// A nil clock defaults to the system clock.
func NewMemoryCounterStore(clock Clock) *MemoryCounterStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryCounterStore{
		records: make(map[string]Record),
		clock:   clock,
	}
}

// Get retrieves the record for the key. Expired records are reported as
// absent and dropped.
func (s *MemoryCounterStore) Get(ctx context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false, nil
	}
	if rec.Expired(s.clock.Now()) {
		delete(s.records, key)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Set stores the record, overwriting any existing one.
func (s *MemoryCounterStore) Set(ctx context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
	return nil
}

// Delete removes the record for the key.
func (s *MemoryCounterStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Sweep removes all records whose window ended at or before now.
func (s *MemoryCounterStore) Sweep(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, key)
		}
	}
	return nil
}

// KeyCount returns the number of stored records, expired ones included.
func (s *MemoryCounterStore) KeyCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records), nil
}

// Increment atomically adds one request to the key's window, starting a new
// window when the key is absent or expired. The check and the write happen
// under a single lock acquisition so concurrent requests for the same key
// cannot under-count.
func (s *MemoryCounterStore) Increment(ctx context.Context, key string, window time.Duration) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rec, ok := s.records[key]
	if !ok || rec.Expired(now) {
		rec = Record{Count: 1, ResetAt: now.Add(window)}
	} else {
		rec.Count++
	}
	s.records[key] = rec
	return rec, nil
}
