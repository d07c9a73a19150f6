package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore implements AtomicCounterStore on a shared Redis instance,
// giving exact cross-process counting for multi-instance gateway deployments.
//
// Each key holds a plain integer counter with a TTL equal to the remaining
// window; INCR and PEXPIRE run in one transactional pipeline, so the
// fixed-window semantics match the in-memory store. Expiry is handled by
// Redis TTLs, which makes Sweep a no-op.
type RedisCounterStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds the connection settings for the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces rate limit keys, default "ratelimit:".
	KeyPrefix string
}

// NewRedisCounterStore connects to Redis and verifies the connection with a
// short ping before returning the store.
func NewRedisCounterStore(cfg RedisConfig) (*RedisCounterStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCounterStore{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

// NewRedisCounterStoreWithClient wraps an existing client, used by tests.
func NewRedisCounterStoreWithClient(client *redis.Client, keyPrefix string) *RedisCounterStore {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisCounterStore{client: client, keyPrefix: keyPrefix}
}

// Close releases the underlying Redis connection.
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

func (s *RedisCounterStore) key(key string) string {
	return s.keyPrefix + key
}

// Increment adds one request to the key's window via a transactional
// INCR+PTTL pipeline. The request that starts a window (counter value 1)
// sets the TTL; later increments inherit the remaining window, so the window
// boundary never slides.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (Record, error) {
	k := s.key(key)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("redis increment: %w", err)
	}

	remaining := ttl.Val()
	if incr.Val() == 1 || remaining < 0 {
		// Fresh window, or a counter left without expiry by a lost PEXPIRE;
		// either way the window starts now.
		remaining = window
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return Record{}, fmt.Errorf("redis expire: %w", err)
		}
	}

	return Record{
		Count:   int(incr.Val()),
		ResetAt: time.Now().Add(remaining),
	}, nil
}

// Get retrieves the record for the key. The reset time is reconstructed from
// the key's remaining TTL.
func (s *RedisCounterStore) Get(ctx context.Context, key string) (Record, bool, error) {
	k := s.key(key)

	pipe := s.client.TxPipeline()
	get := pipe.Get(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	count, err := get.Int()
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get: non-integer counter for %q: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = 0
	}
	return Record{Count: count, ResetAt: time.Now().Add(remaining)}, true, nil
}

// Set stores the record with a TTL until its reset time.
func (s *RedisCounterStore) Set(ctx context.Context, key string, rec Record) error {
	ttl := time.Until(rec.ResetAt)
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	if err := s.client.Set(ctx, s.key(key), rec.Count, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the record for the key.
func (s *RedisCounterStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys via their TTLs.
func (s *RedisCounterStore) Sweep(ctx context.Context, now time.Time) error {
	return nil
}

// KeyCount returns the number of live rate limit keys under the store's
// prefix. It scans rather than using DBSIZE so unrelated keys in a shared
// Redis database are not counted.
func (s *RedisCounterStore) KeyCount(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
