package catalog

import (
	"fmt"
	"strings"

	"catalog-normalizer/internal/infrastructure/config"
	"catalog-normalizer/internal/pkg/common"

	"go.uber.org/zap"
)

// Reconciler 目錄調和器：整輪轉換的驅動者
// 走訪形狀未知的地區/飲食巢狀結構，正規化每筆記錄，
// 套用飲食違規降級，組出正規目錄與變更報告
type Reconciler struct {
	cfg        config.EngineConfig
	report     *ChangeReport
	registry   *IdentifierRegistry
	normalizer *RecordNormalizer
}

// NewReconciler 創建新的目錄調和器，每輪執行各用一個
func NewReconciler(cfg config.EngineConfig) *Reconciler {
	report := NewChangeReport(cfg.SampleLimit, cfg.ChangeLogCap)
	registry := NewIdentifierRegistry(cfg.IDSeed, report)
	return &Reconciler{
		cfg:        cfg,
		report:     report,
		registry:   registry,
		normalizer: NewRecordNormalizer(registry, report),
	}
}

// Report 取得本輪的變更報告
func (rc *Reconciler) Report() *ChangeReport {
	return rc.report
}

// bucketShape 飲食桶位的形狀變體，每個桶位只判定一次
type bucketShape int

const (
	shapeUnknown bucketShape = iota
	shapeFlatList
	shapeByMealType
)

// bucketItem 一筆待正規化的候選記錄與其餐別提示
type bucketItem struct {
	record       interface{}
	mealTypeHint string
}

// dietBucket 判定形狀後的飲食桶位
type dietBucket struct {
	shape bucketShape
	items []bucketItem
}

// Reconcile 執行整輪轉換：單次確定性掃描，全程在記憶體中完成
func (rc *Reconciler) Reconcile(rawDoc map[string]interface{}) (*Document, error) {
	if rawDoc == nil {
		return nil, fmt.Errorf("catalog document is nil")
	}

	out := make(Catalog)
	rc.report.Summary.RegionsIn = len(rawDoc)

	// 排序鍵走訪：識別碼分配順序只取決於輸入內容
	for _, rawRegion := range sortedKeys(rawDoc) {
		regionValue := rawDoc[rawRegion]

		region := CanonicalRegion(rawRegion)
		if region == "" {
			// 未知地區整組丟棄（沿用既有行為），只記數不轉投
			count := countRawRecords(regionValue)
			rc.report.RecordDroppedRegion(rawRegion, count)
			rc.report.Summary.RecordsIn += count
			common.LogDroppedRegion(rawRegion, count)
			continue
		}
		rc.report.RecordRegionRemap(rawRegion, region)

		dietMap, ok := regionValue.(map[string]interface{})
		if !ok {
			continue
		}
		for _, rawDiet := range sortedKeys(dietMap) {
			diet := CanonicalDiet(rawDiet, rc.cfg.DefaultDiet)
			rc.report.RecordDietRemap(rawDiet, diet)

			bucket := classifyDietBucket(dietMap[rawDiet])
			if bucket.shape == shapeUnknown {
				// 桶位值既不是列表也不是餐別物件，整個略過並留痕
				rc.report.Logf("diet bucket skipped (unrecognized shape): %s/%s", rawRegion, rawDiet)
				continue
			}
			for _, item := range bucket.items {
				rc.report.Summary.RecordsIn++
				rc.reconcileItem(out, item, region, diet)
			}
		}
	}

	rc.report.Summary.RecordsOut = out.RecordCount()
	rc.report.Summary.RegionsOut = len(out)
	rc.report.Finish()

	common.LogInfo("正規化完成",
		zap.Int("records_in", rc.report.Summary.RecordsIn),
		zap.Int("records_out", rc.report.Summary.RecordsOut),
		zap.Int("regions_out", rc.report.Summary.RegionsOut),
		zap.Int("reassignments", rc.report.Summary.Reassignments),
		zap.Int("demotions", rc.report.Summary.Demotions),
		zap.Int("unparseable_fields", rc.report.Summary.UnparseableFields),
	)

	return &Document{Catalog: out, Meta: rc.report.Meta()}, nil
}

// reconcileItem 展開選項、正規化、違規檢查、放入桶位
// 狀態流：Raw → Flattened → Normalized → {Accepted | Reclassified}
func (rc *Reconciler) reconcileItem(out Catalog, item bucketItem, region, diet string) {
	rec, ok := item.record.(map[string]interface{})
	if !ok {
		// 非物件記錄靜默丟棄，沒有重試路徑
		rc.report.Summary.DroppedRecords++
		return
	}

	for _, candidate := range FlattenOptions(RawRecord(rec)) {
		normalized := rc.normalizer.Normalize(map[string]interface{}(candidate), region, diet, item.mealTypeHint)
		if normalized == nil {
			rc.report.Summary.DroppedRecords++
			continue
		}

		targetDiet := diet
		if terms := findViolations(diet, normalized); len(terms) > 0 {
			if demoted := DemotionTarget(diet, terms); demoted != "" && demoted != diet {
				targetDiet = demoted
				normalized.Diets = rewriteDiets(normalized.Diets, demoted)
				rc.report.RecordDemotion(Demotion{
					RecordID:       normalized.ID,
					Title:          normalized.Title,
					Region:         normalized.Region,
					FromDiet:       diet,
					ToDiet:         demoted,
					OffendingTerms: terms,
				})
				common.LogDemotion(normalized.ID, normalized.Title, normalized.Region, diet, demoted, terms)
			}
		}

		out.Place(region, targetDiet, normalized.MealType, normalized)
	}
}

// classifyDietBucket 判定飲食桶位的形狀：平坦列表或以餐別為鍵的物件
// 列表內的巢狀陣列（選項展開的殘留）會被攤平
func classifyDietBucket(value interface{}) dietBucket {
	switch v := value.(type) {
	case []interface{}:
		return dietBucket{shape: shapeFlatList, items: flattenItems(v, "")}
	case map[string]interface{}:
		bucket := dietBucket{shape: shapeByMealType}
		for _, mealKey := range sortedKeys(v) {
			hint := mealKey
			switch inner := v[mealKey].(type) {
			case []interface{}:
				bucket.items = append(bucket.items, flattenItems(inner, hint)...)
			case map[string]interface{}:
				// 單筆記錄直接掛在餐別鍵下
				bucket.items = append(bucket.items, bucketItem{record: inner, mealTypeHint: hint})
			}
		}
		return bucket
	default:
		return dietBucket{shape: shapeUnknown}
	}
}

// flattenItems 把任意深度的巢狀陣列攤成一層候選記錄
func flattenItems(list []interface{}, hint string) []bucketItem {
	items := make([]bucketItem, 0, len(list))
	for _, element := range list {
		if nested, ok := element.([]interface{}); ok {
			items = append(items, flattenItems(nested, hint)...)
			continue
		}
		items = append(items, bucketItem{record: element, mealTypeHint: hint})
	}
	return items
}

// countRawRecords 統計未知地區下的原始記錄數（僅供報告）
func countRawRecords(value interface{}) int {
	dietMap, ok := value.(map[string]interface{})
	if !ok {
		return 0
	}
	count := 0
	for _, bucketValue := range dietMap {
		count += len(classifyDietBucket(bucketValue).items)
	}
	return count
}

// findViolations 掃描記錄文字中的飲食違規詞
// 比對標的：標題、食材文字、食物名稱與標籤的串接（不分大小寫子字串）
func findViolations(diet string, rec *CanonicalRecord) []string {
	terms := violationTermsFor(diet)
	if terms == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(rec.Title)
	b.WriteString(" ")
	b.WriteString(rec.Ingredients)
	for _, food := range rec.Foods {
		b.WriteString(" ")
		b.WriteString(food)
	}
	for _, tag := range rec.Tags {
		b.WriteString(" ")
		b.WriteString(tag)
	}
	text := strings.ToLower(b.String())

	var found []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// rewriteDiets 重寫 diets 陣列，降級目標排在最前
func rewriteDiets(diets []string, target string) []string {
	out := make([]string, 0, len(diets)+1)
	out = append(out, target)
	for _, d := range diets {
		if d != target {
			out = append(out, d)
		}
	}
	return out
}
