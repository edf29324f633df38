package catalog

import (
	"strconv"
	"sync"
)

// IdentifierRegistry 識別碼註冊表
// 保證整輪執行中輸出識別碼全域唯一，並追蹤原始→新識別碼的映射。
// 計數器種子需高於任何合理的來源 id，避免與小數值來源 id 撞號。
// 單輪執行為單執行緒；互斥鎖是為了讓註冊表能安全地成為
// 並行化移植時的唯一序列化點
type IdentifierRegistry struct {
	mu      sync.Mutex
	used    map[string]bool
	counter int64
	report  *ChangeReport
}

// NewIdentifierRegistry 創建新的識別碼註冊表
func NewIdentifierRegistry(seed int64, report *ChangeReport) *IdentifierRegistry {
	return &IdentifierRegistry{
		used:    make(map[string]bool),
		counter: seed,
		report:  report,
	}
}

// Allocate 分配輸出識別碼
// 原始 id 存在且未被占用時原樣保留；否則推進計數器越過所有已用值，
// 並在原始 id 存在時把重新分配記入報告。
// 給定固定的輸入走訪順序，結果完全確定
func (r *IdentifierRegistry) Allocate(originalID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if originalID != "" && !r.used[originalID] {
		r.used[originalID] = true
		return originalID
	}

	newID := r.nextFree()
	r.used[newID] = true
	if originalID != "" && r.report != nil {
		r.report.RecordIDReassignment(originalID, newID)
	}
	return newID
}

// nextFree 推進計數器直到未被占用的值
func (r *IdentifierRegistry) nextFree() string {
	for {
		r.counter++
		candidate := strconv.FormatInt(r.counter, 10)
		if !r.used[candidate] {
			return candidate
		}
	}
}

// Used 檢查識別碼是否已被占用
func (r *IdentifierRegistry) Used(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used[id]
}

// Count 已分配的識別碼數量
func (r *IdentifierRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}
