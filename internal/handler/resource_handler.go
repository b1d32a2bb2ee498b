package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/notify"
	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/logger"
)

// Crud 记录存储上的单资源操作，store.Resource 满足该接口
type Crud[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) (*T, error)
	Update(ctx context.Context, id int, v T) error
	Delete(ctx context.Context, id int) error
}

// ResourceDef 描述一个资源的表单解析与显示名
type ResourceDef[T any, F any] struct {
	Name          string // 日志与 action 名，如 "voucher"
	Label         string // 操作员提示中的名称
	Parse         func(F) (T, error)
	WithID        func(T, int) T
	ConfirmDelete string // 非空时删除需要确认
}

// ResourceHandler 通用的 列表/新建/更新/删除，变更成功后重新拉取列表
type ResourceHandler[T any, F any] struct {
	def      ResourceDef[T, F]
	store    Crud[T]
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewResourceHandler[T any, F any](def ResourceDef[T, F], store Crud[T], notifier notify.Notifier, logger *zap.Logger) *ResourceHandler[T, F] {
	return &ResourceHandler[T, F]{def: def, store: store, notifier: notifier, logger: logger}
}

// Register 挂载到路由组
func (h *ResourceHandler[T, F]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, F]) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		h.failure(c, "load "+h.def.Name, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	logger.WithTrace(c.Request.Context(), h.logger).Info("List success",
		zap.String("resource", h.def.Name),
		zap.Int("count", len(items)),
	)
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ResourceHandler[T, F]) Create(c *gin.Context) {
	var f F
	if !bindForm(c, &f) {
		return
	}
	v, err := h.def.Parse(f)
	if err != nil {
		respondError(c, h.logger, "create "+h.def.Name, err)
		return
	}

	action := "create " + h.def.Name
	created, err := h.store.Create(c.Request.Context(), v)
	if err != nil {
		h.failure(c, action, err)
		return
	}
	h.success(c, http.StatusCreated, action, fmt.Sprintf("Tạo %s thành công!", h.def.Label), gin.H{"item": created})
}

func (h *ResourceHandler[T, F]) Update(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	var f F
	if !bindForm(c, &f) {
		return
	}
	v, err := h.def.Parse(f)
	if err != nil {
		respondError(c, h.logger, "update "+h.def.Name, err)
		return
	}
	if h.def.WithID != nil {
		v = h.def.WithID(v, id)
	}

	action := "update " + h.def.Name
	if err := h.store.Update(c.Request.Context(), id, v); err != nil {
		h.failure(c, action, err)
		return
	}
	h.success(c, http.StatusOK, action, fmt.Sprintf("Cập nhật %s thành công!", h.def.Label), gin.H{"item": v})
}

func (h *ResourceHandler[T, F]) Delete(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	action := "delete " + h.def.Name
	if h.def.ConfirmDelete != "" && !confirmed(c) {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "confirmation_required", "prompt": h.def.ConfirmDelete})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.failure(c, action, err)
		return
	}
	h.success(c, http.StatusOK, action, fmt.Sprintf("Xóa %s thành công!", h.def.Label), gin.H{"id": id})
}

// success 通知操作员，并附上重新拉取的列表；重新拉取失败不影响结果
func (h *ResourceHandler[T, F]) success(c *gin.Context, status int, action, message string, body gin.H) {
	ctx := c.Request.Context()
	n := notify.Success(action, message)
	h.notifier.Notify(ctx, n)

	items, err := h.store.List(ctx)
	if err != nil {
		logger.WithTrace(ctx, h.logger).Warn("Re-fetch after mutation failed",
			zap.String("action", action),
			zap.Error(err),
		)
	} else {
		if items == nil {
			items = []T{}
		}
		body["items"] = items
	}
	body["message"] = message

	logger.WithTrace(ctx, h.logger).Info(action+" success", zap.String("resource", h.def.Name))
	c.JSON(status, body)
}

// failure 每次失败只产生一条错误通知
func (h *ResourceHandler[T, F]) failure(c *gin.Context, action string, err error) {
	h.notifier.Notify(c.Request.Context(), notify.Failure(action, err))
	respondError(c, h.logger, action, err)
}

// notifyFailure 供非通用处理器复用
func notifyFailure(c *gin.Context, n notify.Notifier, log *zap.Logger, action string, err error) {
	if !schedule.IsOperatorError(err) {
		n.Notify(c.Request.Context(), notify.Failure(action, err))
	}
	respondError(c, log, action, err)
}
