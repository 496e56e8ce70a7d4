package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingMarker     = "-"
	idempotencyKeyTTL = 24 * time.Hour
	// pendingKeyTTL bounds how long a request that never completed blocks
	// its key.
	pendingKeyTTL = 5 * time.Minute
)

// releaseScript deletes a key only while it still holds the pending marker,
// so a completed request can never be released by a late failure path.
var releaseScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisAdapter stores order idempotency keys. A key holds the pending marker
// while the first request runs and the created order id afterwards.
type RedisAdapter struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: idempotencyKeyTTL, pendingTTL: pendingKeyTTL}
}

func (r *RedisAdapter) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, pendingMarker, r.pendingTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) Complete(ctx context.Context, key, orderID string) error {
	return r.client.Set(ctx, key, orderID, r.ttl).Err()
}

func (r *RedisAdapter) Lookup(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if val == pendingMarker {
		return "", nil
	}
	return val, nil
}

func (r *RedisAdapter) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, r.client, []string{key}, pendingMarker).Err()
}
