package catalog

import (
	"io"
	"net/http"

	core "catalog-normalizer/internal/core/catalog"
	"catalog-normalizer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 目錄相關端點的處理器
type Handler struct {
	service *core.Service
}

// NewHandler 創建目錄處理器
func NewHandler(service *core.Service) *Handler {
	return &Handler{service: service}
}

// HandleNormalize 接收一份原始目錄文件，回傳正規化後的文件
// POST /api/v1/catalog/normalize
func (h *Handler) HandleNormalize(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.LogWarn("讀取請求體失敗", zap.Error(err))
		respondError(c, common.ErrInvalidRequest)
		return
	}
	if len(body) == 0 {
		respondError(c, common.ErrInvalidDocument)
		return
	}

	out, err := h.service.NormalizeDocument(c.Request.Context(), body)
	if err != nil {
		common.LogWarn("正規化請求失敗", zap.Error(err))
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidDocument.Code,
			Message: common.ErrInvalidDocument.Message,
			Details: err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "application/json", out)
}

// HandleCatalog 回傳最近一次的正規化目錄
// GET /api/v1/catalog
func (h *Handler) HandleCatalog(c *gin.Context) {
	doc, err := h.service.Catalog()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleBucket 查詢單一桶位，餐點規劃器的讀取合約
// GET /api/v1/catalog/:region/:diet/:mealType
func (h *Handler) HandleBucket(c *gin.Context) {
	records, err := h.service.LookupBucket(
		c.Param("region"),
		c.Param("diet"),
		c.Param("mealType"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// HandleReport 回傳最近一次的變更報告
// GET /api/v1/report
func (h *Handler) HandleReport(c *gin.Context) {
	report, err := h.service.Report()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// respondError 將自定義錯誤映射為對應的 HTTP 響應
func respondError(c *gin.Context, err error) {
	if custom, ok := err.(*common.CustomError); ok {
		c.JSON(custom.Status, common.ErrorResponse{
			Code:    custom.Code,
			Message: custom.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: err.Error(),
	})
}
