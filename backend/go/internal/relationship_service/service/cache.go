package service

import (
	"RelationshipManager/backend/go/internal/models"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// EstatisticasCacheKey 是统计结果在 Redis 中的键。
const EstatisticasCacheKey = "rede:estatisticas"

// Cache 缓存网络统计结果。任何写操作之后都会调用 Invalidate。
type Cache interface {
	GetEstatisticas(ctx context.Context) (*models.Estatisticas, bool, error)
	SetEstatisticas(ctx context.Context, est *models.Estatisticas) error
	Invalidate(ctx context.Context) error
}

// RedisCache 是基于 go-redis 的 Cache 实现。
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) GetEstatisticas(ctx context.Context) (*models.Estatisticas, bool, error) {
	data, err := c.rdb.Get(ctx, EstatisticasCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var est models.Estatisticas
	if err := json.Unmarshal(data, &est); err != nil {
		return nil, false, err
	}
	return &est, true, nil
}

func (c *RedisCache) SetEstatisticas(ctx context.Context, est *models.Estatisticas) error {
	data, err := json.Marshal(est)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, EstatisticasCacheKey, data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, EstatisticasCacheKey).Err()
}

// NopCache 在未配置 Redis 时使用，从不命中。
type NopCache struct{}

func (NopCache) GetEstatisticas(context.Context) (*models.Estatisticas, bool, error) {
	return nil, false, nil
}

func (NopCache) SetEstatisticas(context.Context, *models.Estatisticas) error { return nil }

func (NopCache) Invalidate(context.Context) error { return nil }
