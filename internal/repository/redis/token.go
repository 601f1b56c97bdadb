package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/telemed-api/internal/repository"
	apperrors "github.com/jwalitptl/telemed-api/pkg/errors"
)

const (
	revokedKeyPrefix = "token:revoked:"
	resetKeyPrefix   = "token:reset:"
)

type tokenRepository struct {
	client *redis.Client
}

func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewTokenRepository(client *redis.Client) repository.TokenRepository {
	return &tokenRepository{client: client}
}

// RevokeToken puts a session token on the denylist for the remainder of
// its validity window.
func (r *tokenRepository) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	err := r.client.Get(ctx, revokedKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, resetKeyPrefix+token, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken validates and invalidates a reset token in one step.
func (r *tokenRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	key := resetKeyPrefix + token

	raw, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, apperrors.Authentication("invalid or expired reset token")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed reset token entry: %w", err)
	}
	return userID, nil
}
