package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestStore(t *testing.T) (*RedisCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounterStoreWithClient(client, "ratelimit:"), mr
}

func TestRedisStore_IncrementSequence(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		rec, err := store.Increment(ctx, "user:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Count)
		assert.WithinDuration(t, time.Now().Add(time.Minute), rec.ResetAt, 2*time.Second)
	}
}

func TestRedisStore_WindowExpiry(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	rec, err := store.Increment(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)

	// Past the window the key is gone and the counter restarts.
	mr.FastForward(2 * time.Minute)

	rec, err = store.Increment(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}

func TestRedisStore_KeyIsolation(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	_, err = store.Increment(ctx, "user:1", time.Minute)
	require.NoError(t, err)

	rec, err := store.Increment(ctx, "user:2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}

func TestRedisStore_GetSetDelete(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", Record{Count: 7, ResetAt: time.Now().Add(time.Minute)}))

	rec, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, rec.Count)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SetExpiredRecordDeletes(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", Record{Count: 3, ResetAt: time.Now().Add(-time.Second)}))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_KeyCountHonorsPrefix(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	_, err = store.Increment(ctx, "user:2", time.Minute)
	require.NoError(t, err)

	// Unrelated keys in the same database are not counted.
	require.NoError(t, mr.Set("session:abc", "1"))

	n, err := store.KeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRedisStore_LimiterIntegration(t *testing.T) {
	store, mr := newRedisTestStore(t)
	limiter := NewLimiter("api", Policy{Window: time.Minute, MaxRequests: 2}, store, nil, nil)
	ctx := context.Background()

	assert.True(t, limiter.Check(ctx, "user:1").Allowed)
	assert.True(t, limiter.Check(ctx, "user:1").Allowed)
	assert.False(t, limiter.Check(ctx, "user:1").Allowed)

	mr.FastForward(2 * time.Minute)

	d := limiter.Check(ctx, "user:1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}
