package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/dashboard"
	"recycleadmin/internal/model"
	"recycleadmin/internal/schedule"
)

// CatalogHandler 只读数据：垃圾类型与首页统计
type CatalogHandler struct {
	wasteTypes dashboard.Lister[model.WasteType]
	summary    *dashboard.Service
	logger     *zap.Logger
}

func NewCatalogHandler(wasteTypes dashboard.Lister[model.WasteType], summary *dashboard.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{wasteTypes: wasteTypes, summary: summary, logger: logger}
}

// WasteTypes GET /waste-types；writable 为可写入预约的类型
func (h *CatalogHandler) WasteTypes(c *gin.Context) {
	items, err := h.wasteTypes.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list waste types", err)
		return
	}
	if items == nil {
		items = []model.WasteType{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "writable": schedule.WasteTypes})
}

// Summary GET /dashboard/summary
func (h *CatalogHandler) Summary(c *gin.Context) {
	sum, err := h.summary.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "dashboard summary", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
