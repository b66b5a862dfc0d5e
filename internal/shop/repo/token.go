package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	logx "github.com/shopfront-core/server/pkg/logger"
)

// RedisTokenRepository keeps the admin token of a session.
type RedisTokenRepository struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
}

func NewRedisTokenRepository(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisTokenRepository {
	return &RedisTokenRepository{rdb: rdb, sessionID: sessionID, ttl: ttl}
}

func (r *RedisTokenRepository) tokenKey() string {
	return fmt.Sprintf("session:%s:token", r.sessionID)
}

// Token returns the stored token, or "" when none is stored.
func (r *RedisTokenRepository) Token(ctx context.Context) (string, error) {
	key := r.tokenKey()
	tok, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read token from redis")
		return "", errx.WrapRedis(err)
	}
	return tok, nil
}

func (r *RedisTokenRepository) SaveToken(ctx context.Context, token string) error {
	key := r.tokenKey()
	if err := r.rdb.Set(ctx, key, token, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store token in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisTokenRepository) ClearToken(ctx context.Context) error {
	key := r.tokenKey()
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete token from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.TokenRepository = (*RedisTokenRepository)(nil)
