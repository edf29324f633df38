package catalog

import (
	"fmt"
	"time"

	"catalog-normalizer/internal/pkg/common"
)

// Demotion 一筆飲食違規降級記錄
type Demotion struct {
	RecordID       string   `json:"record_id"`
	Title          string   `json:"title"`
	Region         string   `json:"region"`
	FromDiet       string   `json:"from_diet"`
	ToDiet         string   `json:"to_diet"`
	OffendingTerms []string `json:"offending_terms"`
}

// UnparseableEvent 無法解析的數值欄位事件
type UnparseableEvent struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

// TitleSynthesis 標題合成事件，記錄觸發的規則名稱
type TitleSynthesis struct {
	RecordID string `json:"record_id"`
	Rule     string `json:"rule"`
	Title    string `json:"title"`
}

// BeforeAfter 正規化前後的記錄對，僅保留有限樣本供人工檢查
type BeforeAfter struct {
	Before RawRecord        `json:"before"`
	After  *CanonicalRecord `json:"after"`
}

// Summary 整輪執行的統計
type Summary struct {
	RecordsIn         int `json:"records_in"`
	RecordsOut        int `json:"records_out"`
	RegionsIn         int `json:"regions_in"`
	RegionsOut        int `json:"regions_out"`
	DroppedRegions    int `json:"dropped_regions"`
	DroppedRecords    int `json:"dropped_records"`
	Reassignments     int `json:"reassignments"`
	Demotions         int `json:"demotions"`
	UnparseableFields int `json:"unparseable_fields"`
}

// ChangeReport 單輪執行的變更報告
// 執行期間累積，完成後視為唯讀，由外部報告端消費
type ChangeReport struct {
	RunID           string              `json:"run_id"`
	StartedAt       time.Time           `json:"started_at"`
	FinishedAt      time.Time           `json:"finished_at"`
	IDReassignments map[string][]string `json:"id_reassignments"`
	RegionRemaps    map[string]string   `json:"region_remaps"`
	DietRemaps      map[string]string   `json:"diet_remaps"`
	DroppedRegions  map[string]int      `json:"dropped_regions"`
	Demotions       []Demotion          `json:"demotions"`
	Unparseable     []UnparseableEvent  `json:"unparseable"`
	TitleSyntheses  []TitleSynthesis    `json:"title_syntheses"`
	Samples         []BeforeAfter       `json:"samples"`
	ChangeLog       []string            `json:"change_log"`
	Summary         Summary             `json:"summary"`

	sampleLimit  int
	changeLogCap int
}

// NewChangeReport 創建新的變更報告
func NewChangeReport(sampleLimit, changeLogCap int) *ChangeReport {
	return &ChangeReport{
		RunID:           common.GenerateUUID(),
		StartedAt:       time.Now().UTC(),
		IDReassignments: make(map[string][]string),
		RegionRemaps:    make(map[string]string),
		DietRemaps:      make(map[string]string),
		DroppedRegions:  make(map[string]int),
		sampleLimit:     sampleLimit,
		changeLogCap:    changeLogCap,
	}
}

// Logf 追加一行人類可讀的變更記錄，超過上限即停止累積
func (r *ChangeReport) Logf(format string, args ...interface{}) {
	if r.changeLogCap > 0 && len(r.ChangeLog) >= r.changeLogCap {
		return
	}
	r.ChangeLog = append(r.ChangeLog, fmt.Sprintf(format, args...))
}

// RecordIDReassignment 記錄識別碼重新分配
// 同一個原始 id 可能撞號多次，每次重新分配都要留痕
func (r *ChangeReport) RecordIDReassignment(originalID, newID string) {
	r.IDReassignments[originalID] = append(r.IDReassignments[originalID], newID)
	r.Summary.Reassignments++
	r.Logf("id reassigned: %s -> %s", originalID, newID)
}

// RecordRegionRemap 記錄地區鍵重映射
func (r *ChangeReport) RecordRegionRemap(raw, canonical string) {
	if raw == canonical {
		return
	}
	r.RegionRemaps[raw] = canonical
	r.Logf("region remapped: %q -> %q", raw, canonical)
}

// RecordDietRemap 記錄飲食鍵重映射
func (r *ChangeReport) RecordDietRemap(raw, canonical string) {
	if raw == canonical {
		return
	}
	r.DietRemaps[raw] = canonical
	r.Logf("diet remapped: %q -> %q", raw, canonical)
}

// RecordDroppedRegion 記錄被丟棄的未知地區與其記錄數
func (r *ChangeReport) RecordDroppedRegion(raw string, recordCount int) {
	r.DroppedRegions[raw] = recordCount
	r.Summary.DroppedRegions++
	r.Summary.DroppedRecords += recordCount
	r.Logf("region dropped (unknown): %q (%d records)", raw, recordCount)
}

// RecordDemotion 記錄飲食違規降級
func (r *ChangeReport) RecordDemotion(d Demotion) {
	r.Demotions = append(r.Demotions, d)
	r.Summary.Demotions++
	r.Logf("diet demotion: %s (%s) %s -> %s, terms=%v",
		d.RecordID, d.Title, d.FromDiet, d.ToDiet, d.OffendingTerms)
}

// RecordUnparseable 記錄無法解析的數值欄位
// 統計照算，事件列表與樣本一樣只保留有限筆數
func (r *ChangeReport) RecordUnparseable(recordID, field, value string) {
	r.Summary.UnparseableFields++
	r.Logf("unparseable numeric: %s.%s = %q (coerced to 0)", recordID, field, value)
	if r.sampleLimit > 0 && len(r.Unparseable) >= r.sampleLimit {
		return
	}
	r.Unparseable = append(r.Unparseable, UnparseableEvent{
		RecordID: recordID,
		Field:    field,
		Value:    value,
	})
}

// RecordTitleSynthesis 記錄標題合成事件及其規則，同樣有樣本上限
func (r *ChangeReport) RecordTitleSynthesis(recordID, rule, title string) {
	r.Logf("title synthesized (%s): %s -> %q", rule, recordID, title)
	if r.sampleLimit > 0 && len(r.TitleSyntheses) >= r.sampleLimit {
		return
	}
	r.TitleSyntheses = append(r.TitleSyntheses, TitleSynthesis{
		RecordID: recordID,
		Rule:     rule,
		Title:    title,
	})
}

// AddSample 追加一組 before/after 樣本，達到上限後不再收集
func (r *ChangeReport) AddSample(before RawRecord, after *CanonicalRecord) {
	if r.sampleLimit > 0 && len(r.Samples) >= r.sampleLimit {
		return
	}
	r.Samples = append(r.Samples, BeforeAfter{Before: before, After: after})
}

// Finish 填入完成時間，此後報告視為唯讀
func (r *ChangeReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// 違規樣本在 __meta__ 中的上限
const metaDemotionSampleCap = 50

// Meta 組出輸出文件的 __meta__ 區塊
// 執行識別碼與時間戳只留在次要的稽核報告：相同輸入必須產出
// 逐位元相同的主文件
func (r *ChangeReport) Meta() map[string]interface{} {
	demotions := r.Demotions
	if len(demotions) > metaDemotionSampleCap {
		demotions = demotions[:metaDemotionSampleCap]
	}
	return map[string]interface{}{
		"change_log":       r.ChangeLog,
		"id_reassignments": r.IDReassignments,
		"region_remaps":    r.RegionRemaps,
		"diet_remaps":      r.DietRemaps,
		"dropped_regions":  r.DroppedRegions,
		"demotions":        demotions,
		"summary":          r.Summary,
	}
}
