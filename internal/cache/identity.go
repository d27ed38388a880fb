package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskzero/taskzero/internal/auth"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "auth:identity:"
	// identityCacheTTL bounds how long a resolved identity is reused
	// without re-checking the user store. Entries never outlive the
	// token: the effective TTL is the smaller of this cap and the
	// token's remaining lifetime.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the wire form of an identity stored in Redis. The
// token expiry travels with the entry so reads can reject entries for
// tokens that expired after being cached.
type cachedIdentity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

// GetIdentity retrieves a cached identity by token fingerprint.
// Returns nil on a cache miss; a corrupted entry, or one whose token
// has expired, is treated as a miss.
func (c *Cache) GetIdentity(ctx context.Context, fingerprint string) (*auth.Identity, error) {
	key := identityCachePrefix + fingerprint

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	expiresAt := time.Unix(cached.ExpiresAt, 0)
	if cached.ExpiresAt <= 0 || !time.Now().Before(expiresAt) {
		return nil, nil
	}

	return &auth.Identity{ID: cached.ID, Email: cached.Email, ExpiresAt: expiresAt}, nil
}

// SetIdentity caches a resolved identity keyed by token fingerprint.
// remaining is the token's remaining lifetime; the entry expires at the
// earlier of the cache cap and the token expiry. Identities from
// already-expired tokens are never cached.
func (c *Cache) SetIdentity(ctx context.Context, fingerprint string, identity *auth.Identity, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}

	ttl := identityCacheTTL
	if remaining < ttl {
		ttl = remaining
	}

	data, err := json.Marshal(cachedIdentity{
		ID:        identity.ID,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	key := identityCachePrefix + fingerprint
	return c.client.Set(ctx, key, data, ttl).Err()
}
