package redis

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	goredis "github.com/redis/go-redis/v9"
)

const reservedValue = "reserved"

// IdempotencyStore holds idempotency keys in Redis with SET NX and a TTL.
type IdempotencyStore struct {
	client goredis.Cmdable
}

// NewIdempotencyStore creates a Redis backed idempotency store.
func NewIdempotencyStore(client goredis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

var _ portsrepo.IdempotencyStore = (*IdempotencyStore)(nil)

// Reserve sets key only when it is absent. It returns false when another request holds it.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, reservedValue, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
