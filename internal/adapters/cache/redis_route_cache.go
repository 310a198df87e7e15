package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
)

const redisKeyPrefix = "route:"

// RedisRouteCache keeps fetched routes in Redis with an expiry.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisRouteCache wraps client. A ttl of zero keeps entries forever.
func NewRedisRouteCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl, log: log}
}

func (r *RedisRouteCache) Get(ctx context.Context, origin, dest domain.Coordinates) (_ []domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, r.log, "route.cache.redis.Get")(&err)

	if r.client == nil {
		return nil, false, errors.New("redis route cache: client is nil")
	}

	b, err := r.client.Get(ctx, redisKeyPrefix+RouteKey(origin, dest)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	path, err := decodePath(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: decode path: %w", err)
	}
	return path, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, origin, dest domain.Coordinates, path []domain.Coordinates) (err error) {
	defer obs.Time(ctx, r.log, "route.cache.redis.Put")(&err)

	if r.client == nil {
		return errors.New("redis route cache: client is nil")
	}
	if len(path) == 0 {
		return nil
	}

	b, err := encodePath(path)
	if err != nil {
		return fmt.Errorf("put route cache: encode path: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+RouteKey(origin, dest), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	return nil
}
