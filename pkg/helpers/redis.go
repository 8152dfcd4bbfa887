package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func refreshKey(userID string) string {
	return "auth:refresh:" + userID
}

// RefreshTokenStore persists the currently valid refresh token per user.
// Issuing a new pair overwrites the previous token, which revokes it.
type RefreshTokenStore struct {
	rdb *redis.Client
}

func NewRefreshTokenStore(rdb *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{rdb: rdb}
}

func (s *RefreshTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(userID), token, ttl).Err()
}

// Get returns the stored token, or "" when none is stored.
func (s *RefreshTokenStore) Get(ctx context.Context, userID string) (string, error) {
	v, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, refreshKey(userID)).Err()
}
