package catalog

// RecordNormalizer 單筆記錄正規化器
// 組合欄位轉換器、識別碼註冊表與報告，把一筆原始記錄轉為正規記錄
type RecordNormalizer struct {
	registry *IdentifierRegistry
	report   *ChangeReport
}

// NewRecordNormalizer 創建新的記錄正規化器
func NewRecordNormalizer(registry *IdentifierRegistry, report *ChangeReport) *RecordNormalizer {
	return &RecordNormalizer{
		registry: registry,
		report:   report,
	}
}

// 五個獨立轉換的數值欄位；單一欄位失敗不影響其他欄位
var numericFields = []string{"calories", "protein", "carbs", "fat", "fiber"}

// Normalize 正規化一筆原始記錄，非物件輸入回傳 nil（靜默丟棄，不重試）
// 未列入正規形狀的額外欄位（如 preparation*）在此一併消失
func (n *RecordNormalizer) Normalize(raw interface{}, regionKey, dietKey, mealTypeHint string) *CanonicalRecord {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	rec := RawRecord(m)

	id := n.registry.Allocate(ScalarString(rec["id"]))

	// 明確餐別優先；沒有時用桶位的餐別鍵當提示
	explicit := ScalarString(rec["mealType"])
	if explicit == "" {
		explicit = mealTypeHint
	}
	tags := TagList(rec["tags"])
	title := GenerateTitle(rec, regionKey, dietKey, id, n.report)

	out := &CanonicalRecord{
		ID:       id,
		Title:    title,
		MealType: InferMealType(explicit, title, tags),
		Region:   regionKey,
		Diets:    normalizeDiets(rec["diets"], dietKey),
	}

	values := make(map[string]float64, len(numericFields))
	for _, field := range numericFields {
		v := CoerceNumber(rec[field], id, field, n.report)
		if v < 0 {
			// 正規記錄的營養值不為負
			v = 0
		}
		values[field] = v
	}
	out.Calories = values["calories"]
	out.Protein = values["protein"]
	out.Carbs = values["carbs"]
	out.Fat = values["fat"]
	out.Fiber = values["fiber"]

	// 選填欄位只在輸入存在時帶過去
	if _, ok := rec["serving_size"]; ok {
		out.ServingSize = ScalarString(rec["serving_size"])
	}
	if _, ok := rec["foods"]; ok {
		out.Foods = FoodNames(rec["foods"])
	}
	if _, ok := rec["ingredients"]; ok {
		out.Ingredients = ScalarString(rec["ingredients"])
	}
	if _, ok := rec["tags"]; ok {
		out.Tags = tags
	}

	n.report.AddSample(rec, out)
	return out
}

// normalizeDiets 修復 diets 欄位：保證非空且包含所屬桶位的飲食鍵
// 輸入不是陣列時直接以 [dietKey] 取代
func normalizeDiets(v interface{}, dietKey string) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{dietKey}
	}
	diets := make([]string, 0, len(items)+1)
	seen := false
	for _, item := range items {
		s := ScalarString(item)
		if s == "" {
			continue
		}
		if s == dietKey {
			seen = true
		}
		diets = append(diets, s)
	}
	if !seen {
		diets = append(diets, dietKey)
	}
	return diets
}
