// Package redis provides Redis-based adapters for the fieldops system.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// VerificationCache decorates a TokenVerifier with a short-TTL Redis cache so
// repeated requests with the same bearer token skip the provider round trip.
// Cache failures are best-effort: the inner verifier remains authoritative.
type VerificationCache struct {
	client redis.UniversalClient
	inner  ports.TokenVerifier
	prefix string
	ttl    time.Duration
}

var _ ports.TokenVerifier = (*VerificationCache)(nil)

// NewVerificationCache creates a verification cache in front of inner.
// A non-positive ttl defaults to one minute; the TTL must stay well below
// token lifetimes since a cached entry bypasses expiry checks until it ages
// out.
func NewVerificationCache(client redis.UniversalClient, inner ports.TokenVerifier, ttl time.Duration) *VerificationCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &VerificationCache{
		client: client,
		inner:  inner,
		prefix: "verify:",
		ttl:    ttl,
	}
}

// cacheEntry is the persisted shape of a verified identity. The token itself
// is never stored; the key is a digest of it.
type cacheEntry struct {
	ID string `json:"id"`
}

func (c *VerificationCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

// VerifyToken returns the cached identity for the token when present,
// otherwise delegates to the inner verifier and caches a success.
func (c *VerificationCache) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	key := c.key(token)

	data, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var entry cacheEntry
		if unmarshalErr := json.Unmarshal([]byte(data), &entry); unmarshalErr == nil && entry.ID != "" {
			return domainauth.Identity{ID: entry.ID, Token: token}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		// degraded cache; fall through to the provider
		_ = err
	}

	ident, err := c.inner.VerifyToken(ctx, token)
	if err != nil {
		return domainauth.Identity{}, err
	}

	if payload, marshalErr := json.Marshal(cacheEntry{ID: ident.ID}); marshalErr == nil {
		// best-effort write; a failed Set only costs the next round trip
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return ident, nil
}
