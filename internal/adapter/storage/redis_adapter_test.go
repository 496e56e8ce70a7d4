package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisReserveCompleteLookup(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	ok, err := adapter.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	id, err := adapter.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, id, "pending key looks up as empty")

	require.NoError(t, adapter.Complete(ctx, key, "order-1"))

	ok, err = adapter.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	id, err = adapter.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)

	// completed keys survive a release
	require.NoError(t, adapter.Release(ctx, key))
	id, err = adapter.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
}

func TestRedisPendingKeyExpiresSooner(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	ok, err := adapter.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, pendingKeyTTL)

	require.NoError(t, adapter.Complete(ctx, key, "order-1"))

	ttl, err = client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, pendingKeyTTL)
	assert.LessOrEqual(t, ttl, idempotencyKeyTTL)
}

func TestRedisReleasePending(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	ok, err := adapter.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, adapter.Release(ctx, key))

	ok, err = adapter.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisReserve_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "idempotency:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := adapter.Reserve(ctx, key); err == nil && ok {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
}
