package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"catalog-normalizer/internal/infrastructure/config"
)

// ResultCache 正規化結果快取
// 鍵為輸入文件的內容雜湊，值為輸出文件的 JSON 位元組。
// 引擎本身是確定性的，快取只是 serve 模式下避免重算的手段
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定選擇快取後端，快取停用時回傳 nil
func New(cfg *config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "redis":
		return newRedisCache(cfg)
	case "memory":
		return newMemoryCache(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Key 計算輸入文件的快取鍵（SHA-256）
func Key(document []byte) string {
	hash := sha256.Sum256(document)
	return "catalog:normalized:" + hex.EncodeToString(hash[:])
}
