package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenStore shares revoked token ids between API replicas and survives
// restarts. RedisTokenStore is the production implementation.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RevocationList remembers logged-out token ids until they would have
// expired anyway. Without a shared store revocations are local to this
// process.
type RevocationList struct {
	local  *cache.Cache
	shared TokenStore
}

func NewRevocationList(cleanupInterval time.Duration) *RevocationList {
	return &RevocationList{
		local: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// WithStore writes revocations through to store and consults it on local
// misses.
func (r *RevocationList) WithStore(store TokenStore) *RevocationList {
	r.shared = store
	return r
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	r.local.Set(tokenID, struct{}{}, ttl)

	if r.shared != nil {
		if err := r.shared.Revoke(ctx, tokenID, ttl); err != nil {
			return fmt.Errorf("failed to share revocation: %w", err)
		}
	}
	return nil
}

// IsRevoked fails closed: a store error is returned to the caller, which
// must reject the token.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if _, found := r.local.Get(tokenID); found {
		return true, nil
	}
	if r.shared == nil || tokenID == "" {
		return false, nil
	}

	revoked, err := r.shared.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}
