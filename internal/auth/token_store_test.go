package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenStore_DenyTokenSkipsExpired(t *testing.T) {
	store := NewTokenStore(nil)

	// an already-expired token has nothing left to revoke
	assert.NoError(t, store.DenyToken(context.Background(), "some-jti", 0))
	assert.NoError(t, store.DenyToken(context.Background(), "some-jti", -time.Minute))
}

func TestTokenStore_IsDeniedFailsOpen(t *testing.T) {
	// a nil cache client behaves like an unreachable redis; that must read
	// as "not denied" rather than locking every session out
	store := NewTokenStore(nil)

	denied, err := store.IsDenied(context.Background(), "some-jti")
	assert.NoError(t, err)
	assert.False(t, denied)
}

func TestTokenStore_DenyTokenSurvivesCacheOutage(t *testing.T) {
	store := NewTokenStore(nil)

	assert.NoError(t, store.DenyToken(context.Background(), "some-jti", time.Hour))
}
