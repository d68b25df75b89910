package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "fittrack:session:revoked:"

// RevocationStore is the server-side session denylist keyed by token ID.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRevocationStore picks the Redis denylist when a client is configured
// and the no-op store otherwise.
func NewRevocationStore(client *redis.Client, logger *zap.Logger) RevocationStore {
	if client == nil {
		logger.Named("auth").Warn("no redis client, logout only clears the cookie")
		return NoopRevocationStore{}
	}
	return NewRedisRevocationStore(client)
}

type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

// MarkRevoked keeps the entry only as long as the token could still verify.
func (s *RedisRevocationStore) MarkRevoked(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NoopRevocationStore never revokes; tokens live until they expire.
type NoopRevocationStore struct{}

func (NoopRevocationStore) MarkRevoked(context.Context, string, time.Time) error { return nil }

func (NoopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
