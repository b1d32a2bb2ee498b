package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/notify"
	"recycleadmin/internal/repository"
	"recycleadmin/pkg/outbox"
)

// FeedReader 读取操作员通知
type FeedReader interface {
	Recent(ctx context.Context) ([]notify.Notification, error)
}

// ActionLister 审计记录
type ActionLister interface {
	ListRecent(ctx context.Context, resourceID int64, limit int) ([]repository.ActionLog, error)
}

type AdminHandler struct {
	replayService *outbox.ReplayService
	actions       ActionLister
	feed          FeedReader
	logger        *zap.Logger
}

func NewAdminHandler(replayService *outbox.ReplayService, actions ActionLister, feed FeedReader, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		replayService: replayService,
		actions:       actions,
		feed:          feed,
		logger:        logger,
	}
}

// Notifications GET /notifications
func (h *AdminHandler) Notifications(c *gin.Context) {
	items, err := h.feed.Recent(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read notification feed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notification feed unavailable"})
		return
	}
	if items == nil {
		items = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Actions GET /admin/actions?schedule_id=&limit=
func (h *AdminHandler) Actions(c *gin.Context) {
	var resourceID int64
	if raw := c.Query("schedule_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule_id parameter"})
			return
		}
		resourceID = id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.actions.ListRecent(c.Request.Context(), resourceID, limit)
	if err != nil {
		h.logger.Error("Failed to list operator actions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list actions"})
		return
	}
	if logs == nil {
		logs = []repository.ActionLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// ReplayOutboxEvent 重放指定的 Outbox 事件
// POST /admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id parameter"})
		return
	}

	eventID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.replayService.ReplayEvent(c.Request.Context(), eventID); err != nil {
		h.logger.Error("Failed to replay event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, outbox.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error":   "failed to replay event",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "replayed",
		"event_id": eventID,
	})
}

// ReplayFailedEvents 重放所有失败的事件
// POST /admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	successCount, err := h.replayService.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to replay failed events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to replay failed events",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "completed",
		"success_count": successCount,
		"limit":         limit,
	})
}
