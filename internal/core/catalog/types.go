package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"catalog-normalizer/internal/pkg/common"
)

// RawRecord 原始餐點記錄，形狀不固定
// 只讀不改：所有轉換都產生新的 CanonicalRecord
type RawRecord map[string]interface{}

// CanonicalRecord 正規化後的固定形狀記錄
type CanonicalRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	MealType    string   `json:"mealType"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Fiber       float64  `json:"fiber"`
	Region      string   `json:"region"`
	Diets       []string `json:"diets"`
	ServingSize string   `json:"serving_size,omitempty"`
	Foods       []string `json:"foods,omitempty"`
	Ingredients string   `json:"ingredients,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Catalog 正規化目錄：地區 → 飲食 → 餐別 → 記錄列表
type Catalog map[string]map[string]map[string][]*CanonicalRecord

// Place 將記錄放入對應桶位，桶位不存在時建立
func (c Catalog) Place(region, diet, mealType string, rec *CanonicalRecord) {
	if c[region] == nil {
		c[region] = make(map[string]map[string][]*CanonicalRecord)
	}
	if c[region][diet] == nil {
		c[region][diet] = make(map[string][]*CanonicalRecord)
	}
	c[region][diet][mealType] = append(c[region][diet][mealType], rec)
}

// Lookup 取出單一桶位的記錄列表
func (c Catalog) Lookup(region, diet, mealType string) ([]*CanonicalRecord, bool) {
	diets, ok := c[region]
	if !ok {
		return nil, false
	}
	meals, ok := diets[diet]
	if !ok {
		return nil, false
	}
	records, ok := meals[mealType]
	return records, ok
}

// RecordCount 計算目錄中的記錄總數
func (c Catalog) RecordCount() int {
	total := 0
	for _, diets := range c {
		for _, meals := range diets {
			for _, records := range meals {
				total += len(records)
			}
		}
	}
	return total
}

// Document 輸出文件：正規化目錄加上 __meta__ 區塊
type Document struct {
	Catalog Catalog
	Meta    map[string]interface{}
}

// MetaKey __meta__ 鍵名，讀取時忽略、輸出時重新生成
const MetaKey = "__meta__"

// MarshalJSON 將目錄與 __meta__ 平鋪在同一層輸出
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Catalog)+1)
	for region, diets := range d.Catalog {
		out[region] = diets
	}
	if d.Meta != nil {
		out[MetaKey] = d.Meta
	}
	return json.Marshal(out)
}

// ParseRawDocument 解析原始目錄文件，頂層必須是 JSON 物件
// __meta__ 鍵在此階段即被剝除
func ParseRawDocument(data []byte) (map[string]interface{}, error) {
	var doc interface{}
	if err := common.ParseJSONBytes(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("catalog document must be a JSON object")
	}
	delete(obj, MetaKey)
	return obj, nil
}

// sortedKeys 回傳排序後的鍵，保證走訪順序確定
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalarString 將任意純量轉為字串，nil 與非純量回傳空字串
func ScalarString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case int:
		return fmt.Sprintf("%d", s)
	case int64:
		return fmt.Sprintf("%d", s)
	case bool:
		return fmt.Sprintf("%t", s)
	default:
		return ""
	}
}

// FoodNames 從 foods 欄位抽出食物名稱，支援字串與 {name} 物件兩種形式
func FoodNames(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		switch f := item.(type) {
		case string:
			if s := strings.TrimSpace(f); s != "" {
				names = append(names, s)
			}
		case map[string]interface{}:
			if s := ScalarString(f["name"]); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

// TagList 將 tags 欄位包裝為字串切片，純量自動升格為單元素切片
func TagList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []interface{}:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			if s := ScalarString(item); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		if s := ScalarString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}
