package redis

import (
	"context"
	"time"

	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/redis/go-redis/v9"
)

// All bindings live in a single hash: field = refresh token string,
// value = user id.
const refreshTokensKey = "refreshTokens"

type RedisRefreshTokenStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewRedisRefreshTokenStore(client *redis.Client, opTimeout time.Duration) *RedisRefreshTokenStore {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &RedisRefreshTokenStore{client: client, opTimeout: opTimeout}
}

func (s *RedisRefreshTokenStore) LookupUser(ctx context.Context, refreshToken string) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	userID, err := s.client.HGet(ctx, refreshTokensKey, refreshToken).Result()
	switch {
	case err == redis.Nil:
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "LookupUser")
	case userID == "":
		// a rotation of an absent token leaves an unbound entry
		return "", customErrors.ErrNotFound
	}
	return userID, nil
}

func (s *RedisRefreshTokenStore) Assign(ctx context.Context, userID, refreshToken string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	bindings, err := s.client.HGetAll(ctx, refreshTokensKey).Result()
	if err != nil {
		return customErrors.WrapInternal(err, "Assign")
	}
	if existing := findTokenByUser(bindings, userID); existing != "" {
		if err := s.client.HDel(ctx, refreshTokensKey, existing).Err(); err != nil {
			return customErrors.WrapInternal(err, "Assign")
		}
	}
	// HSetNX: never silently overwrite another user's binding under the
	// same token value.
	if err := s.client.HSetNX(ctx, refreshTokensKey, refreshToken, userID).Err(); err != nil {
		return customErrors.WrapInternal(err, "Assign")
	}
	return nil
}

func (s *RedisRefreshTokenStore) Rotate(ctx context.Context, oldToken, newToken string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	userID, err := s.client.HGet(ctx, refreshTokensKey, oldToken).Result()
	if err != nil && err != redis.Nil {
		return customErrors.WrapInternal(err, "Rotate")
	}
	if err := s.client.HDel(ctx, refreshTokensKey, oldToken).Err(); err != nil {
		return customErrors.WrapInternal(err, "Rotate")
	}
	if err := s.client.HSetNX(ctx, refreshTokensKey, newToken, userID).Err(); err != nil {
		return customErrors.WrapInternal(err, "Rotate")
	}
	return nil
}

func (s *RedisRefreshTokenStore) Revoke(ctx context.Context, userID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	bindings, err := s.client.HGetAll(ctx, refreshTokensKey).Result()
	if err != nil {
		return customErrors.WrapInternal(err, "Revoke")
	}
	token := findTokenByUser(bindings, userID)
	if token == "" {
		return nil
	}
	if err := s.client.HDel(ctx, refreshTokensKey, token).Err(); err != nil {
		return customErrors.WrapInternal(err, "Revoke")
	}
	return nil
}

// opContext bounds every store operation so a stalled Redis never hangs
// a request.
func (s *RedisRefreshTokenStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func findTokenByUser(bindings map[string]string, userID string) string {
	for token, uid := range bindings {
		if uid == userID {
			return token
		}
	}
	return ""
}
