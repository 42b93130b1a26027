package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MrSnakeDoc/murmur/internal/logger"
	redisstore "github.com/MrSnakeDoc/murmur/internal/store/redis"
)

// CachedResolver wraps a Resolver with a Redis-backed cache keyed by token
// digest. Only positive resolutions are cached; failed or unresolvable
// tokens always hit the upstream resolver. Cache errors are logged and
// ignored so a broken cache never breaks resolution.
type CachedResolver struct {
	next   Resolver
	store  *redisstore.Store
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedResolver(next Resolver, store *redisstore.Store, ttl time.Duration, log logger.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = redisstore.DefaultIdentityTTL
	}
	return &CachedResolver{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	digest := TokenDigest(token)

	payload, err := c.store.GetCachedIdentity(ctx, digest)
	if err != nil {
		c.logger.Warn("identity cache read failed", logger.Error(err))
	} else if payload != nil {
		var id Identity
		if err := json.Unmarshal(payload, &id); err == nil && id.ID != "" {
			return &id, nil
		}
		// Corrupt entry: drop it and fall through to the resolver.
		_ = c.store.InvalidateIdentity(ctx, digest)
	}

	id, err := c.next.Resolve(ctx, token)
	if err != nil || id == nil {
		return id, err
	}

	if payload, err := json.Marshal(id); err == nil {
		if err := c.store.CacheIdentity(ctx, digest, payload, c.ttl); err != nil {
			c.logger.Warn("identity cache write failed", logger.Error(err))
		}
	}
	return id, nil
}
