package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"catalog-normalizer/internal/core/cache"
	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceNormalizeDocument(t *testing.T) {
	svc := NewService(testEngineConfig(), nil)

	input := []byte(`{"indian": {"vegan": [{"id": "1", "title": "Dal Fry Curry"}]}}`)
	out, err := svc.NormalizeDocument(context.Background(), input)
	require.NoError(t, err)

	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Contains(t, round, "Indian")
	assert.Contains(t, round, MetaKey)
}

func TestServiceNormalizeInvalidDocument(t *testing.T) {
	svc := NewService(testEngineConfig(), nil)

	_, err := svc.NormalizeDocument(context.Background(), []byte(`not json`))
	assert.Error(t, err)

	_, err = svc.NormalizeDocument(context.Background(), []byte(`["top-level array"]`))
	assert.Error(t, err)
}

func TestServiceNotReadyBeforeFirstRun(t *testing.T) {
	svc := NewService(testEngineConfig(), nil)

	_, err := svc.Catalog()
	assert.ErrorIs(t, err, error(common.ErrCatalogNotReady))

	_, err = svc.Report()
	assert.Error(t, err)

	_, err = svc.LookupBucket("Indian", DietVegan, MealLunch)
	assert.Error(t, err)
}

func TestServiceLookupBucketContract(t *testing.T) {
	svc := NewService(testEngineConfig(), nil)

	input := []byte(`{"indian": {"vegan": [{"id": "1", "title": "Dal Fry Curry"}]}}`)
	_, err := svc.NormalizeDocument(context.Background(), input)
	require.NoError(t, err)

	// 命中的桶位
	records, err := svc.LookupBucket("Indian", DietVegan, MealDinner)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dal Fry Curry", records[0].Title)

	// 合法但空的桶位回空陣列，不是錯誤（規劃器合約）
	records, err = svc.LookupBucket("Thai", DietKeto, MealSnacks)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	// 非法枚舉值逐一拒絕
	_, err = svc.LookupBucket("Atlantis", DietVegan, MealLunch)
	assert.ErrorIs(t, err, error(common.ErrUnknownRegion))
	_, err = svc.LookupBucket("Indian", "Fruitarian", MealLunch)
	assert.ErrorIs(t, err, error(common.ErrUnknownDiet))
	_, err = svc.LookupBucket("Indian", DietVegan, "brunch")
	assert.ErrorIs(t, err, error(common.ErrUnknownMealType))
}

func TestServiceColdStartWithWarmCache(t *testing.T) {
	resultCache, err := cache.New(&config.CacheConfig{
		Enabled:         true,
		Backend:         "memory",
		MaxSize:         10,
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
	})
	require.NoError(t, err)
	defer resultCache.Close()

	input := []byte(`{"indian": {"vegan": [{"id": "1", "title": "Dal Fry Curry"}]}}`)

	first := NewService(testEngineConfig(), resultCache)
	warm, err := first.NormalizeDocument(context.Background(), input)
	require.NoError(t, err)

	// 重啟後的新實例接上既有快取：必須重算一次填回本地狀態，
	// 查詢端點才不會回 CATALOG_NOT_READY
	second := NewService(testEngineConfig(), resultCache)
	out, err := second.NormalizeDocument(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, string(warm), string(out), "the engine is deterministic, so the recomputed document matches")

	_, err = second.Catalog()
	assert.NoError(t, err)
	_, err = second.Report()
	assert.NoError(t, err)

	records, err := second.LookupBucket("Indian", DietVegan, MealDinner)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestServiceReportExposed(t *testing.T) {
	svc := NewService(testEngineConfig(), nil)

	input := []byte(`{"indian": {"vegan": [{"id": "1", "title": "Dal"}, {"id": "1", "title": "Chana"}]}}`)
	_, err := svc.NormalizeDocument(context.Background(), input)
	require.NoError(t, err)

	report, err := svc.Report()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Reassignments)
	assert.NotEmpty(t, report.RunID)
}
