// Package cache contains Redis-backed adapters for short-lived state.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lindero/lindero-auth/internal/repository"
)

const resetKeyPrefix = "pwreset:"

// RedisResetStore implements repository.ResetTokenStore with a TTL so stale
// reset tokens expire on their own.
type RedisResetStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ repository.ResetTokenStore = (*RedisResetStore)(nil)

// NewRedisResetStore constructs a Redis-backed reset-token store.
func NewRedisResetStore(client redis.UniversalClient, ttl time.Duration) *RedisResetStore {
	return &RedisResetStore{client: client, ttl: ttl}
}

// Save stores the token with the configured TTL.
func (s *RedisResetStore) Save(ctx context.Context, token string, userID int64) error {
	if err := s.client.Set(ctx, resetKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist reset token: %w", err)
	}
	return nil
}

// Consume resolves and deletes the token atomically via GETDEL so a token
// can be redeemed at most once.
func (s *RedisResetStore) Consume(ctx context.Context, token string) (int64, bool, error) {
	val, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("consume reset token: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode reset token payload: %w", err)
	}
	return userID, true, nil
}
