package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps client-supplied Idempotency-Key values to the id of
// the resource they created.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Lookup returns the id recorded for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records id for key (expires after 24h). An existing mapping is
// kept, so the first writer wins.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, id string) error {
	if err := s.client.SetNX(ctx, s.key(scope, key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
