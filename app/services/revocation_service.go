// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storelinehq/storeline-admin/utils"
)

// RevocationService tracks revoked token IDs so logged-out tokens die
// before their natural expiry. Entries carry a TTL equal to the token's
// remaining lifetime; after that the token is dead on its own.
type RevocationService interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revocationKeyPrefix = "admin:revoked:"

// RedisRevocationService implements RevocationService on Redis
type RedisRevocationService struct {
	client *redis.Client
}

// NewRedisRevocationService creates a Redis-backed revocation list
func NewRedisRevocationService(client *redis.Client) RevocationService {
	return &RedisRevocationService{client: client}
}

// Revoke tombstones the token ID until the token would have expired anyway
func (s *RedisRevocationService) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // Already expired, nothing to track
	}

	key := revocationKeyPrefix + tokenID
	if err := s.client.Set(ctx, key, utils.UTCNow().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token ID is on the revocation list
func (s *RedisRevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revocationKeyPrefix + tokenID
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
