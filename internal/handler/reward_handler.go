package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
)

// RewardStore 积分流水资源
type RewardStore interface {
	Crud[model.Reward]
	ListByUser(ctx context.Context, userID int) ([]model.Reward, error)
}

// RewardHandler 列表支持按用户过滤，其余操作复用通用处理器
type RewardHandler struct {
	*ResourceHandler[model.Reward, form.RewardForm]
	rewards RewardStore
	now     func() time.Time
}

func NewRewardHandler(rewards RewardStore, notifier notify.Notifier, logger *zap.Logger) *RewardHandler {
	h := &RewardHandler{rewards: rewards, now: time.Now}
	h.ResourceHandler = NewResourceHandler(ResourceDef[model.Reward, form.RewardForm]{
		Name:  "reward",
		Label: "phần thưởng",
		Parse: func(f form.RewardForm) (model.Reward, error) {
			r, err := f.Parse()
			if err != nil {
				return r, err
			}
			r.CreatedAt = model.NewTime(h.now().UTC())
			return r, nil
		},
		WithID: func(r model.Reward, id int) model.Reward {
			r.RewardID = id
			return r
		},
	}, rewards, notifier, logger)
	return h
}

func (h *RewardHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List GET /rewards?user_id=
func (h *RewardHandler) List(c *gin.Context) {
	userID, err := form.ParseOptionalID("user_id", c.Query("user_id"))
	if err != nil {
		respondError(c, h.logger, "list rewards", err)
		return
	}
	if userID == 0 {
		h.ResourceHandler.List(c)
		return
	}

	items, err := h.rewards.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.failure(c, "load rewards", err)
		return
	}
	if items == nil {
		items = []model.Reward{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
