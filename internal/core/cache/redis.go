package cache

import (
	"context"
	"fmt"

	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisCache Redis 快取後端，供多實例部署共用正規化結果
type redisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

// newRedisCache 創建 Redis 快取並測試連接
func newRedisCache(cfg *config.CacheConfig) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", "redis"),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &redisCache{
		client: client,
		cfg:    cfg,
	}, nil
}

// Get 獲取快取
func (s *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("redis", key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("redis", key)
	return data, nil
}

// Set 設置快取
func (s *redisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取快取統計信息
func (s *redisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"addr":    s.cfg.RedisAddr,
	}
}

// Close 關閉連接
func (s *redisCache) Close() error {
	return s.client.Close()
}
