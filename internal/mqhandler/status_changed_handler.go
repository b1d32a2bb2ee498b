package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"recycleadmin/internal/notify"
	"recycleadmin/internal/repository"
	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/mq"
)

const dedupScope = "schedule_status_changed"

// Guard 消息去重，util.Deduper 满足该接口
type Guard interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

// StatusChangedHandler 把 schedule.status_changed 事件转成操作员通知，
// 让其他实例的仪表盘也能看到状态变化
type StatusChangedHandler struct {
	feed   notify.Notifier
	guard  Guard
	logger *zap.Logger
}

func NewStatusChangedHandler(feed notify.Notifier, guard Guard, logger *zap.Logger) *StatusChangedHandler {
	return &StatusChangedHandler{feed: feed, guard: guard, logger: logger}
}

// Handle 幂等：同一事件重复投递只通知一次
func (h *StatusChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p repository.StatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal status changed payload", zap.Error(err))
		return mq.Permanent(err)
	}
	if p.ScheduleID <= 0 {
		return mq.Permanent(fmt.Errorf("status changed event without schedule_id"))
	}

	to := schedule.Status(p.To)
	if !to.Known() {
		return mq.Permanent(fmt.Errorf("%w: %q", schedule.ErrUnknownStatus, p.To))
	}

	log := logger.WithTrace(ctx, h.logger).With(
		zap.Int("schedule_id", p.ScheduleID),
		zap.String("from", p.From),
		zap.String("to", p.To),
	)

	key := fmt.Sprintf("%d:%s:%s:%s", p.ScheduleID, p.From, p.To, p.TraceID)
	if h.guard != nil && !h.guard.AcquireOnce(ctx, dedupScope, key) {
		log.Debug("Status change already announced, skipping")
		return nil
	}

	msg := fmt.Sprintf("Lịch #%d: %s → %s", p.ScheduleID, schedule.Status(p.From).Label(), to.Label())
	h.feed.Notify(ctx, notify.Info(schedule.ActionStatusChanged, msg))

	log.Info("Status change announced")
	return nil
}
