package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CoerceNumber 將任意輸入轉為可用的非 NaN 數值
// nil 與空字串靜默回傳 0；字串先剝除雜訊再解析；
// 解析失敗記入報告（以記錄 id 與欄位名為鍵）後回傳 0，永不 panic
func CoerceNumber(value interface{}, recordID, field string, report *ChangeReport) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		// 原生 JSON 數字直接解析，避免把科學記號當雜訊剝掉
		if f, err := v.Float64(); err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return 0
			}
			return f
		}
		return coerceNumericString(v.String(), recordID, field, report)
	case string:
		return coerceNumericString(v, recordID, field, report)
	default:
		if report != nil {
			report.RecordUnparseable(recordID, field, fmt.Sprintf("%v", value))
		}
		return 0
	}
}

func coerceNumericString(s, recordID, field string, report *ChangeReport) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}

	cleaned := cleanNumericString(trimmed)
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		if report != nil {
			report.RecordUnparseable(recordID, field, s)
		}
		return 0
	}
	return parsed
}

// cleanNumericString 只保留數字、小數點與開頭的負號
// 千分位逗號與貨幣式雜訊（"1,200 kcal"）因此能無損通過
func cleanNumericString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InferMealType 推斷餐別
// 有明確值時：小寫去空白後比對枚舉，"snack"→snacks、"supper"→dinner，
// 其他值一律落到 lunch。沒有明確值時掃描標題與標籤的關鍵字族，
// 都沒中則預設 lunch —— 這是刻意的政策選擇，不是錯誤
func InferMealType(explicit, title string, tags []string) string {
	if e := strings.ToLower(strings.TrimSpace(explicit)); e != "" {
		switch e {
		case MealBreakfast, MealLunch, MealDinner, MealSnacks:
			return e
		case "snack":
			return MealSnacks
		case "supper":
			return MealDinner
		default:
			return MealLunch
		}
	}

	text := strings.ToLower(title)
	if len(tags) > 0 {
		text += " " + strings.ToLower(strings.Join(tags, " "))
	}
	for _, kw := range breakfastKeywords {
		if strings.Contains(text, kw) {
			return MealBreakfast
		}
	}
	for _, kw := range dinnerKeywords {
		if strings.Contains(text, kw) {
			return MealDinner
		}
	}
	for _, kw := range snackKeywords {
		if strings.Contains(text, kw) {
			return MealSnacks
		}
	}
	return MealLunch
}

// placeholderTitlePattern 佔位標題，如 "Option 1"、"option  2"
var placeholderTitlePattern = regexp.MustCompile(`(?i)^option\s*\d+$`)

// 標題合成規則名稱，記入報告供稽核
const (
	titleRuleFoods       = "foods_join"
	titleRuleIngredients = "ingredients_prefix"
	titleRuleFallback    = "synthetic_fallback"
)

// GenerateTitle 產生記錄標題，優先序：
// 既有標題（非佔位）→ 前三個食物名稱 → 食材文字前六個詞 → 合成標題
// 每條合成路徑都連同規則名稱記入報告
func GenerateTitle(rec RawRecord, region, diet, fallbackID string, report *ChangeReport) string {
	if title := ScalarString(rec["title"]); title != "" && !placeholderTitlePattern.MatchString(title) {
		return title
	}

	if foods := FoodNames(rec["foods"]); len(foods) > 0 {
		title := joinFoodNames(foods)
		if report != nil {
			report.RecordTitleSynthesis(fallbackID, titleRuleFoods, title)
		}
		return title
	}

	if ingredients := ScalarString(rec["ingredients"]); ingredients != "" {
		words := strings.Fields(ingredients)
		if len(words) > 6 {
			words = words[:6]
		}
		title := strings.Join(words, " ")
		if report != nil {
			report.RecordTitleSynthesis(fallbackID, titleRuleIngredients, title)
		}
		return title
	}

	title := fmt.Sprintf("Meal %s-%s-%s", region, diet, fallbackID)
	if report != nil {
		report.RecordTitleSynthesis(fallbackID, titleRuleFallback, title)
	}
	return title
}

// joinFoodNames 以 "A"、"A & B"、"A, B & C" 的格式串接前三個食物名稱
func joinFoodNames(foods []string) string {
	if len(foods) > 3 {
		foods = foods[:3]
	}
	switch len(foods) {
	case 1:
		return foods[0]
	case 2:
		return foods[0] + " & " + foods[1]
	default:
		return strings.Join(foods[:len(foods)-1], ", ") + " & " + foods[len(foods)-1]
	}
}
