package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"vcregistry/internal/registry/models"
)

// IdentityCache is a read-through wallet->identity cache. Identities are
// immutable after creation, so positive entries never go stale; the TTL only
// bounds memory. Cache faults are advisory: they are logged and the caller
// falls through to the store.
type IdentityCache struct {
	client *Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdentityCache builds a cache over an established client.
func NewIdentityCache(client *Client, ttl time.Duration, logger *slog.Logger) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl, logger: logger}
}

type cachedIdentity struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func cacheKey(walletAddress string) string {
	return "vcregistry:identity:" + walletAddress
}

func (c *IdentityCache) Get(ctx context.Context, walletAddress string) (*models.Identity, bool) {
	raw, err := c.client.Get(ctx, cacheKey(walletAddress)).Bytes()
	if err != nil {
		return nil, false
	}
	var cached cachedIdentity
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.WarnContext(ctx, "identity cache entry corrupt", "wallet", walletAddress)
		return nil, false
	}
	return &models.Identity{
		ID:            cached.ID,
		WalletAddress: cached.WalletAddress,
		CreatedAt:     cached.CreatedAt,
	}, true
}

func (c *IdentityCache) Put(ctx context.Context, identity *models.Identity) {
	raw, err := json.Marshal(cachedIdentity{
		ID:            identity.ID,
		WalletAddress: identity.WalletAddress,
		CreatedAt:     identity.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(identity.WalletAddress), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "identity cache write failed",
			"wallet", identity.WalletAddress, "error", err.Error())
	}
}
