package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultIdentityTTL is the default TTL for cached identity resolutions.
	DefaultIdentityTTL = 5 * time.Minute
)

// Store handles Redis operations for the identity-resolution cache.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// CacheIdentity stores a serialized identity under a token digest.
func (s *Store) CacheIdentity(ctx context.Context, digest string, payload []byte, ttl time.Duration) error {
	key := IdentityKey(digest)
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}
	return nil
}

// GetCachedIdentity retrieves a cached identity payload.
// A cache miss returns (nil, nil).
func (s *Store) GetCachedIdentity(ctx context.Context, digest string) ([]byte, error) {
	key := IdentityKey(digest)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached identity: %w", err)
	}
	return payload, nil
}

// InvalidateIdentity removes a cached identity.
func (s *Store) InvalidateIdentity(ctx context.Context, digest string) error {
	key := IdentityKey(digest)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate identity: %w", err)
	}
	return nil
}
