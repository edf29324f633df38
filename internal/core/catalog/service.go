package catalog

import (
	"context"
	"encoding/json"
	"sync"

	"catalog-normalizer/internal/core/cache"
	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"go.uber.org/zap"
)

// Service serve 模式下的目錄服務
// 持有最近一次正規化的結果供查詢端點使用；
// 相同輸入的重複提交由內容雜湊快取吸收
type Service struct {
	cfg         config.EngineConfig
	resultCache cache.ResultCache

	mu     sync.RWMutex
	doc    *Document
	report *ChangeReport
}

// NewService 創建目錄服務
func NewService(cfg config.EngineConfig, resultCache cache.ResultCache) *Service {
	return &Service{
		cfg:         cfg,
		resultCache: resultCache,
	}
}

// NormalizeDocument 正規化一份原始目錄並回傳輸出文件的 JSON
// 快取只在本地已有一輪結果時生效：冷啟動（如重啟後接上既有的
// Redis）必須重算一次，查詢端點才有目錄與報告可回
func (s *Service) NormalizeDocument(ctx context.Context, input []byte) ([]byte, error) {
	key := cache.Key(input)

	s.mu.RLock()
	warm := s.doc != nil
	s.mu.RUnlock()

	if s.resultCache != nil && warm {
		if data, err := s.resultCache.Get(ctx, key); err == nil {
			return data, nil
		}
	}

	raw, err := ParseRawDocument(input)
	if err != nil {
		return nil, err
	}

	rc := NewReconciler(s.cfg)
	doc, err := rc.Reconcile(raw)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.doc = doc
	s.report = rc.Report()
	s.mu.Unlock()

	if s.resultCache != nil {
		if err := s.resultCache.Set(ctx, key, out); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}
	return out, nil
}

// Catalog 取得最近一次的正規化結果
func (s *Service) Catalog() (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, common.ErrCatalogNotReady
	}
	return s.doc, nil
}

// Report 取得最近一次的變更報告
func (s *Service) Report() (*ChangeReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil, common.ErrCatalogNotReady
	}
	return s.report, nil
}

// LookupBucket 查詢單一地區/飲食/餐別桶位
// 這是外部餐點規劃器的讀取合約：回傳值一定是記錄陣列
func (s *Service) LookupBucket(region, diet, mealType string) ([]*CanonicalRecord, error) {
	if !IsCanonicalRegion(region) {
		return nil, common.ErrUnknownRegion
	}
	if !IsCanonicalDiet(diet) {
		return nil, common.ErrUnknownDiet
	}
	if !isCanonicalMealType(mealType) {
		return nil, common.ErrUnknownMealType
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, common.ErrCatalogNotReady
	}
	records, ok := s.doc.Catalog.Lookup(region, diet, mealType)
	if !ok || records == nil {
		return []*CanonicalRecord{}, nil
	}
	return records, nil
}

// CacheStats 快取統計，無快取時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.resultCache == nil {
		return nil
	}
	return s.resultCache.Stats()
}

func isCanonicalMealType(mealType string) bool {
	for _, m := range CanonicalMealTypes {
		if m == mealType {
			return true
		}
	}
	return false
}
