package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const denylistPrefix = "revoked_token:"

// TokenDenylist records revoked token ids in Redis until their natural
// expiry. Revocation is best-effort: when Redis is unavailable the cookie
// clearing on logout still ends the browser session, the denylist only
// closes the window for a stolen token.
type TokenDenylist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTokenDenylist builds a denylist. client may be nil, in which case all
// operations no-op.
func NewTokenDenylist(client *redis.Client, logger *zap.Logger) *TokenDenylist {
	return &TokenDenylist{client: client, logger: logger}
}

// Revoke marks a token id as revoked for the remaining token lifetime.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) {
	if d == nil || d.client == nil || tokenID == "" {
		return
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}
	if err := d.client.Set(ctx, denylistPrefix+tokenID, 1, ttl).Err(); err != nil {
		d.logger.Warn("failed to record revoked token", zap.Error(err))
	}
}

// IsRevoked reports whether the token id has been revoked. Errors degrade
// to "not revoked" so an unreachable Redis does not lock everyone out.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if d == nil || d.client == nil || tokenID == "" {
		return false
	}
	n, err := d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		d.logger.Warn("token revocation check failed", zap.Error(err))
		return false
	}
	return n > 0
}
