// Package redis provides the optional Redis-backed submission idempotency
// store. When a client retries a sale with the same Idempotency-Key, only
// the first attempt reaches the processor.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "salescore:idem:"
	defaultTTL = 24 * time.Hour
)

// IdempotencyStore claims idempotency keys with a TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates an IdempotencyStore over the given client. A zero ttl uses the
// 24h default.
func New(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim atomically claims key for the caller. It returns true when this is
// the first claim within the TTL window, false when the key was already
// claimed.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
}

// Release frees a claimed key, allowing a retry. Used when the claimed
// attempt fails with a system error before any state was committed.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
