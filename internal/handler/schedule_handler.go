package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/export"
	"recycleadmin/internal/form"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/logger"
)

type ScheduleHandler struct {
	manager  *schedule.Manager
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewScheduleHandler(manager *schedule.Manager, notifier notify.Notifier, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{manager: manager, notifier: notifier, logger: logger}
}

func (h *ScheduleHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/markers", h.Markers)
	g.POST("/markers/:id/actions", h.MarkerAction)
	g.GET("/export.xlsx", h.Export)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/status", h.UpdateStatus)
	g.GET("/:id/transitions", h.Transitions)
}

// load 按 user_id 刷新视图，并返回按 status/date 过滤后的结果
func (h *ScheduleHandler) load(c *gin.Context) ([]schedule.Schedule, schedule.Filter, bool) {
	userID, err := form.ParseOptionalID("user_id", c.Query("user_id"))
	if err != nil {
		respondError(c, h.logger, "list schedules", err)
		return nil, schedule.Filter{}, false
	}
	filter, err := schedule.ParseFilter(c.Query("status"), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, "list schedules", form.FieldErrors{"filter": err.Error()})
		return nil, schedule.Filter{}, false
	}

	if _, err := h.manager.Refresh(c.Request.Context(), userID); err != nil {
		notifyFailure(c, h.notifier, h.logger, "load schedules", err)
		return nil, schedule.Filter{}, false
	}
	return h.manager.View(filter), filter, true
}

// List GET /schedules?user_id=&status=&date=
func (h *ScheduleHandler) List(c *gin.Context) {
	list, _, ok := h.load(c)
	if !ok {
		return
	}
	logger.WithTrace(c.Request.Context(), h.logger).Info("ListSchedules: success",
		zap.Int("user_id", h.manager.UserFilter()),
		zap.Int("count", len(list)),
	)
	c.JSON(http.StatusOK, gin.H{
		"schedules": list,
		"counts":    schedule.CountByStatus(list),
	})
}

// Create POST /schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var f form.ScheduleForm
	if !bindForm(c, &f) {
		return
	}
	s, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "create schedule", err)
		return
	}

	list, err := h.manager.Create(c.Request.Context(), s)
	if err != nil {
		respondError(c, h.logger, "create schedule", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedules": list, "message": "Tạo lịch mới thành công!"})
}

// Update PUT /schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	var f form.ScheduleForm
	if !bindForm(c, &f) {
		return
	}
	s, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "update schedule", err)
		return
	}

	list, err := h.manager.Update(c.Request.Context(), id, s)
	if err != nil {
		respondError(c, h.logger, "update schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": list, "message": "Cập nhật lịch thành công!"})
}

// Delete DELETE /schedules/:id?confirm=true
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	list, err := h.manager.Delete(c.Request.Context(), id, schedule.ConfirmIf(confirmed(c)))
	if err != nil {
		h.respondLifecycleError(c, "delete schedule", schedule.PromptDelete, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": list, "message": "Xóa lịch thành công!"})
}

// UpdateStatus PUT /schedules/:id/status {status, confirm}
func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	var f form.StatusForm
	if !bindForm(c, &f) {
		return
	}
	target, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "update status", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("UpdateStatus request received",
		zap.Int("schedule_id", id),
		zap.String("status", string(target)),
		zap.Bool("confirm", f.Confirm),
	)

	change, err := h.manager.ChangeStatus(c.Request.Context(), id, target, schedule.ConfirmIf(f.Confirm))
	if err != nil {
		h.respondLifecycleError(c, "update status", schedule.PromptCancel, err)
		return
	}

	body := gin.H{
		"schedule":  change.Schedule,
		"schedules": h.manager.View(schedule.Filter{}),
	}
	if change.Applied {
		body["message"] = "Cập nhật trạng thái thành công: " + target.Label()
	}
	c.JSON(http.StatusOK, body)
}

// Transitions GET /schedules/:id/transitions
func (h *ScheduleHandler) Transitions(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	s, allowed, err := h.manager.Transitions(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "list transitions", err)
		return
	}

	options := make([]gin.H, 0, len(allowed))
	for _, st := range allowed {
		options = append(options, gin.H{
			"status":                st,
			"label":                 st.Label(),
			"requires_confirmation": st != s.Status && st.RequiresConfirmation(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"scheduleID":  s.ScheduleID,
		"status":      s.Status,
		"statusLabel": s.Status.Label(),
		"options":     options,
	})
}

// Markers GET /schedules/markers
func (h *ScheduleHandler) Markers(c *gin.Context) {
	_, filter, ok := h.load(c)
	if !ok {
		return
	}
	ms := h.manager.Markers(filter)
	defer ms.Close()
	c.JSON(http.StatusOK, ms)
}

// MarkerAction POST /schedules/markers/:id/actions {status, confirm}
func (h *ScheduleHandler) MarkerAction(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	var f form.StatusForm
	if !bindForm(c, &f) {
		return
	}
	target, err := f.Parse()
	if err != nil {
		respondError(c, h.logger, "marker action", err)
		return
	}

	// 视图中没有该记录时先刷新
	if _, err := h.manager.Lookup(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "marker action", err)
		return
	}
	ms := h.manager.Markers(schedule.Filter{})
	err = ms.Trigger(c.Request.Context(), id, target, schedule.ConfirmIf(f.Confirm))
	ms.Close()
	if err != nil {
		h.respondLifecycleError(c, "marker action", schedule.PromptCancel, err)
		return
	}

	next := h.manager.Markers(schedule.Filter{})
	defer next.Close()
	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật trạng thái thành công: " + target.Label(),
		"markers": next,
	})
}

// Export GET /schedules/export.xlsx
func (h *ScheduleHandler) Export(c *gin.Context) {
	list, _, ok := h.load(c)
	if !ok {
		return
	}
	data, err := export.Schedules(list)
	if err != nil {
		respondError(c, h.logger, "export schedules", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename("schedules", time.Now())+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}

// respondLifecycleError 缺少确认时返回提示文案
func (h *ScheduleHandler) respondLifecycleError(c *gin.Context, action, prompt string, err error) {
	if errors.Is(err, schedule.ErrNotConfirmed) {
		logger.WithTrace(c.Request.Context(), h.logger).Info(action+" awaiting confirmation")
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation_required", "prompt": prompt})
		return
	}
	respondError(c, h.logger, action, err)
}
