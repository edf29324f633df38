package catalog

import "fmt"

// FlattenOptions 展開帶 options 子列表的記錄
// 每個選項產生一筆獨立的候選記錄：物件選項淺合併到父記錄副本上，
// 字串選項設為 title；父記錄若有 id，衍生記錄的 id 加上選項索引後綴
// （id_0、id_1 …），確保進入註冊表前識別碼就互不相同。
// 沒有 options 欄位時為 no-op，回傳單元素列表
func FlattenOptions(rec RawRecord) []RawRecord {
	options, ok := rec["options"].([]interface{})
	if !ok || len(options) == 0 {
		return []RawRecord{rec}
	}

	parentID := ScalarString(rec["id"])
	out := make([]RawRecord, 0, len(options))
	for i, opt := range options {
		derived := make(RawRecord, len(rec))
		for k, v := range rec {
			if k == "options" {
				continue
			}
			derived[k] = v
		}

		switch o := opt.(type) {
		case string:
			derived["title"] = o
		case map[string]interface{}:
			for k, v := range o {
				derived[k] = v
			}
		}

		if parentID != "" {
			derived["id"] = fmt.Sprintf("%s_%d", parentID, i)
		}
		out = append(out, derived)
	}
	return out
}
