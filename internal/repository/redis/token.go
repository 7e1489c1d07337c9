package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

// RefreshTokenRepository stores refresh token hashes in Redis with a TTL
// equal to the token lifetime, so expiry needs no sweeper.
type RefreshTokenRepository struct {
	client *redis.Client
}

// NewRefreshTokenRepository creates a Redis-backed refresh token repository.
func NewRefreshTokenRepository(client *redis.Client) *RefreshTokenRepository {
	return &RefreshTokenRepository{client: client}
}

func tokenKey(tokenHash string) string {
	return "refresh_token:" + tokenHash
}

// Store saves the token hash mapped to its owner, expiring after ttl.
func (r *RefreshTokenRepository) Store(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// UserID resolves a token hash to the owning user. An unknown or expired
// token is an unauthorized error, not an internal one.
func (r *RefreshTokenRepository) UserID(ctx context.Context, tokenHash string) (string, error) {
	userID, err := r.client.Get(ctx, tokenKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.Unauthorized("invalid or expired refresh token")
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return userID, nil
}

// Revoke deletes the token hash. Revoking an unknown token is a no-op.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if err := r.client.Del(ctx, tokenKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
