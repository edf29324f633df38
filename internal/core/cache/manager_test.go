package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"catalog-normalizer/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		Enabled:         true,
		Backend:         "memory",
		MaxSize:         3,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newMemoryCache(testCacheConfig())
	defer c.Close()
	ctx := context.Background()

	key := Key([]byte(`{"indian": {}}`))
	require.NoError(t, c.Set(ctx, key, []byte("normalized")))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("normalized"), got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newMemoryCache(testCacheConfig())
	defer c.Close()

	_, err := c.Get(context.Background(), "absent")
	assert.Error(t, err)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cfg := testCacheConfig()
	cfg.TTL = -time.Second // 立即過期
	c := newMemoryCache(cfg)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c := newMemoryCache(testCacheConfig())
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v")))
	}

	// 讓 k0、k1 有訪問記錄，k2 成為淘汰對象
	_, _ = c.Get(ctx, "k0")
	_, _ = c.Get(ctx, "k1")

	require.NoError(t, c.Set(ctx, "k3", []byte("v")))

	_, err := c.Get(ctx, "k2")
	assert.Error(t, err, "least-recently-used entry is evicted")
	_, err = c.Get(ctx, "k3")
	assert.NoError(t, err)
}

func TestCacheKeyStableAndDistinct(t *testing.T) {
	a := Key([]byte(`{"a": 1}`))
	b := Key([]byte(`{"a": 1}`))
	c := Key([]byte(`{"a": 2}`))

	assert.Equal(t, a, b, "same document hashes to the same key")
	assert.NotEqual(t, a, c)
}

func TestNewDisabledCache(t *testing.T) {
	c, err := New(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(&config.CacheConfig{Enabled: true, Backend: "etcd"})
	assert.Error(t, err)
}

func TestMemoryCacheStats(t *testing.T) {
	c := newMemoryCache(testCacheConfig())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, "memory", stats["backend"])
}
