package auth

import (
	"context"
	"time"

	"inkpress/internal/cache"
)

const denyListKeyPrefix = "denylist:token:"

// TokenStoreInterface defines the deny-list operations used for logout
// revocation.
type TokenStoreInterface interface {
	DenyToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsDenied(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked token IDs in redis until their natural expiry.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// DenyToken records a token ID as revoked for the remaining token lifetime.
func (s *TokenStore) DenyToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}
	return s.cache.SetFlag(ctx, denyListKeyPrefix+tokenID, ttl)
}

// IsDenied reports whether a token ID has been revoked. Redis failures read
// as "not denied" so an unreachable cache cannot lock everyone out.
func (s *TokenStore) IsDenied(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.HasFlag(ctx, denyListKeyPrefix+tokenID), nil
}
