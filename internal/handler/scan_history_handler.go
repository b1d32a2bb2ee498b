package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/export"
	"recycleadmin/internal/form"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
)

// ScanHistoryStore 扫描记录资源
type ScanHistoryStore interface {
	Crud[model.ScanHistory]
	Search(ctx context.Context, keyword string) ([]model.ScanHistory, error)
	ListByUser(ctx context.Context, userID int) ([]model.ScanHistory, error)
	MonthlyStats(ctx context.Context, userID int) ([]model.MonthlyStats, error)
}

type ScanHistoryHandler struct {
	*ResourceHandler[model.ScanHistory, form.ScanHistoryForm]
	histories ScanHistoryStore
}

func NewScanHistoryHandler(histories ScanHistoryStore, notifier notify.Notifier, logger *zap.Logger) *ScanHistoryHandler {
	return &ScanHistoryHandler{
		histories: histories,
		ResourceHandler: NewResourceHandler(ResourceDef[model.ScanHistory, form.ScanHistoryForm]{
			Name:  "scan history",
			Label: "lịch sử quét",
			Parse: func(f form.ScanHistoryForm) (model.ScanHistory, error) {
				return f.Parse(time.Now())
			},
			WithID: func(h model.ScanHistory, id int) model.ScanHistory {
				h.ScanID = id
				return h
			},
		}, histories, notifier, logger),
	}
}

func (h *ScanHistoryHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/export.xlsx", h.Export)
	g.GET("/stats/:user_id", h.Stats)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// fetch keyword 优先，其次 user_id，否则全部
func (h *ScanHistoryHandler) fetch(c *gin.Context) ([]model.ScanHistory, bool) {
	ctx := c.Request.Context()
	userID, err := form.ParseOptionalID("user_id", c.Query("user_id"))
	if err != nil {
		respondError(c, h.logger, "list scan histories", err)
		return nil, false
	}

	var items []model.ScanHistory
	switch keyword := strings.TrimSpace(c.Query("keyword")); {
	case keyword != "":
		items, err = h.histories.Search(ctx, keyword)
	case userID != 0:
		items, err = h.histories.ListByUser(ctx, userID)
	default:
		items, err = h.histories.List(ctx)
	}
	if err != nil {
		h.failure(c, "load scan histories", err)
		return nil, false
	}
	if items == nil {
		items = []model.ScanHistory{}
	}
	return items, true
}

// List GET /scan-histories?keyword=&user_id=
func (h *ScanHistoryHandler) List(c *gin.Context) {
	items, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Stats GET /scan-histories/stats/:user_id
func (h *ScanHistoryHandler) Stats(c *gin.Context) {
	userID, err := form.ParseID("user_id", c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, "scan stats", err)
		return
	}
	stats, err := h.histories.MonthlyStats(c.Request.Context(), userID)
	if err != nil {
		h.failure(c, "load scan stats", err)
		return
	}
	if stats == nil {
		stats = []model.MonthlyStats{}
	}
	c.JSON(http.StatusOK, gin.H{"userID": userID, "stats": stats})
}

// Export GET /scan-histories/export.xlsx
func (h *ScanHistoryHandler) Export(c *gin.Context) {
	items, ok := h.fetch(c)
	if !ok {
		return
	}
	data, err := export.ScanHistories(items)
	if err != nil {
		respondError(c, h.logger, "export scan histories", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename("scan-histories", time.Now())+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}
