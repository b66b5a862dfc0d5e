package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
	logx "github.com/shopfront-core/server/pkg/logger"
)

// RedisCartRepository stores one session's cart as a JSON list under a single key.
type RedisCartRepository struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
}

func NewRedisCartRepository(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{rdb: rdb, sessionID: sessionID, ttl: ttl}
}

func (r *RedisCartRepository) cartKey() string {
	return fmt.Sprintf("cart:%s", r.sessionID)
}

// Load returns the stored lines. A missing key is an empty cart, and so is a
// payload that no longer decodes.
func (r *RedisCartRepository) Load(ctx context.Context) ([]model.CartLine, error) {
	key := r.cartKey()

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.CartLine{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load cart from redis")
		return nil, errx.WrapRedis(err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("discarding undecodable cart payload")
		return []model.CartLine{}, nil
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return lines, nil
}

// Save overwrites the stored cart and refreshes its TTL.
func (r *RedisCartRepository) Save(ctx context.Context, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", r.sessionID).Msg("failed to marshal cart")
		return fmt.Errorf("marshal cart: %w", err)
	}
	key := r.cartKey()
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write cart to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.CartRepository = (*RedisCartRepository)(nil)
