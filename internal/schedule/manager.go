package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/metrics"
)

// 操作员确认提示
const (
	PromptCancel = "Bạn có chắc muốn HỦY lịch thu gom này không?"
	PromptDelete = "Bạn có chắc muốn xóa lịch này?"
)

// 审计动作名
const (
	ActionCreated       = "schedule.created"
	ActionUpdated       = "schedule.updated"
	ActionDeleted       = "schedule.deleted"
	ActionStatusChanged = "schedule.status_changed"
)

// Store 记录存储中的预约操作
type Store interface {
	ListSchedules(ctx context.Context) ([]Schedule, error)
	ListSchedulesByUser(ctx context.Context, userID int) ([]Schedule, error)
	CreateSchedule(ctx context.Context, s Schedule) (*Schedule, error)
	UpdateSchedule(ctx context.Context, s Schedule) error
	UpdateScheduleStatus(ctx context.Context, id int, status Status) error
	DeleteSchedule(ctx context.Context, id int) error
}

// Confirmer 向操作员索取确认
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed / Declined 固定答复，HTTP 层按请求中的 confirm 字段选用
var (
	Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	Declined  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)

// ConfirmIf 根据布尔值返回 Confirmed 或 Declined
func ConfirmIf(ok bool) Confirmer {
	if ok {
		return Confirmed
	}
	return Declined
}

// Action 一次成功变更的审计信息
type Action struct {
	Name       string
	ScheduleID int
	From       Status
	To         Status
	Record     *Schedule
}

// Recorder 审计出口，失败不影响操作结果
type Recorder interface {
	RecordScheduleAction(ctx context.Context, a Action) error
}

// Manager 持有当前视图并执行所有预约变更
type Manager struct {
	store    Store
	notifier notify.Notifier
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	view   []Schedule
	userID int // 0 表示全部用户
}

func NewManager(store Store, notifier notify.Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithRecorder 设置审计出口
func (m *Manager) WithRecorder(r Recorder) *Manager {
	m.recorder = r
	return m
}

// Refresh 从存储重新拉取，成功后整体替换视图；userID 为 0 表示全部
func (m *Manager) Refresh(ctx context.Context, userID int) ([]Schedule, error) {
	if userID < 0 {
		return nil, fmt.Errorf("invalid user filter %d", userID)
	}

	var (
		list []Schedule
		err  error
	)
	if userID == 0 {
		list, err = m.store.ListSchedules(ctx)
	} else {
		list, err = m.store.ListSchedulesByUser(ctx, userID)
	}
	if err != nil {
		logger.WithTrace(ctx, m.logger).Warn("Schedule refresh failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	if list == nil {
		list = []Schedule{}
	}

	m.mu.Lock()
	m.view = list
	m.userID = userID
	m.mu.Unlock()

	return cloneSchedules(list), nil
}

// View 返回当前视图经过本地过滤后的副本
func (m *Manager) View(f Filter) []Schedule {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return f.Apply(m.view)
}

// UserFilter 当前视图的用户过滤条件
func (m *Manager) UserFilter() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// Lookup 在视图中查找记录，找不到时先刷新一次
func (m *Manager) Lookup(ctx context.Context, id int) (Schedule, error) {
	if s, ok := m.find(id); ok {
		return s, nil
	}
	if _, err := m.Refresh(ctx, m.UserFilter()); err != nil {
		return Schedule{}, err
	}
	if s, ok := m.find(id); ok {
		return s, nil
	}
	return Schedule{}, fmt.Errorf("%w: %d", ErrScheduleNotFound, id)
}

// current 取记录的现存版本：视图优先，其次按当前用户过滤刷新；
// 视图按用户过滤且仍找不到时查全量列表，但不替换视图
func (m *Manager) current(ctx context.Context, id int) (Schedule, error) {
	s, err := m.Lookup(ctx, id)
	if err == nil || !errors.Is(err, ErrScheduleNotFound) || m.UserFilter() == 0 {
		return s, err
	}

	all, err := m.store.ListSchedules(ctx)
	if err != nil {
		return Schedule{}, fmt.Errorf("list schedules: %w", err)
	}
	for _, s := range all {
		if s.ScheduleID == id {
			return s, nil
		}
	}
	return Schedule{}, fmt.Errorf("%w: %d", ErrScheduleNotFound, id)
}

func (m *Manager) find(id int) (Schedule, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.view {
		if s.ScheduleID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

// Transitions 返回记录当前可选的状态
func (m *Manager) Transitions(ctx context.Context, id int) (Schedule, []Status, error) {
	s, err := m.Lookup(ctx, id)
	if err != nil {
		return Schedule{}, nil, err
	}
	return s, AllowedTransitions(s.Status), nil
}

// StatusChange 一次状态变更请求的结果；Applied 为 false 表示目标与当前状态相同
type StatusChange struct {
	Schedule Schedule
	From     Status
	Applied  bool
}

// RequestStatusChange 见 ChangeStatus，只返回变更后的记录
func (m *Manager) RequestStatusChange(ctx context.Context, id int, target Status, confirm Confirmer) (*Schedule, error) {
	change, err := m.ChangeStatus(ctx, id, target, confirm)
	if err != nil {
		return nil, err
	}
	return &change.Schedule, nil
}

// ChangeStatus 校验目标状态、必要时索取确认、调用存储，成功后重新拉取视图。
// 失败时视图不变并产生一条错误通知，不做重试。
func (m *Manager) ChangeStatus(ctx context.Context, id int, target Status, confirm Confirmer) (StatusChange, error) {
	const action = "update status"
	log := logger.WithTrace(ctx, m.logger).With(zap.Int("schedule_id", id), zap.String("to", string(target)))

	current, err := m.current(ctx, id)
	if err != nil {
		metrics.IncrementStatusTransition("unknown", string(target), "failed")
		return StatusChange{}, m.fail(ctx, action, err)
	}
	from := current.Status

	if !CanTransition(from, target) {
		metrics.IncrementStatusTransition(string(from), string(target), "rejected")
		return StatusChange{}, m.fail(ctx, action, &TransitionError{ScheduleID: id, From: from, To: target})
	}
	if from == target {
		return StatusChange{Schedule: current, From: from}, nil
	}

	if target.RequiresConfirmation() && (confirm == nil || !confirm.Confirm(ctx, PromptCancel)) {
		metrics.IncrementStatusTransition(string(from), string(target), "declined")
		log.Info("Status change declined by operator")
		return StatusChange{}, ErrNotConfirmed
	}

	if err := m.store.UpdateScheduleStatus(ctx, id, target); err != nil {
		metrics.IncrementStatusTransition(string(from), string(target), "failed")
		return StatusChange{}, m.fail(ctx, action, err)
	}
	metrics.IncrementStatusTransition(string(from), string(target), "success")
	log.Info("Status change applied", zap.String("from", string(from)))

	m.notify(ctx, notify.Success(action, "Cập nhật trạng thái thành công: "+target.Label()))
	m.refreshAfter(ctx, action)
	m.record(ctx, Action{Name: ActionStatusChanged, ScheduleID: id, From: from, To: target})

	change := StatusChange{Schedule: current, From: from, Applied: true}
	if updated, ok := m.find(id); ok {
		change.Schedule = updated
	}
	change.Schedule.Status = target
	return change, nil
}

// Create 新建预约：状态固定为 Pending，createdAt 取当前时间
func (m *Manager) Create(ctx context.Context, s Schedule) ([]Schedule, error) {
	const action = "create schedule"

	s.ScheduleID = 0
	s.Status = StatusPending
	s.CreatedAt = model.NewTime(m.now().UTC())

	created, err := m.store.CreateSchedule(ctx, s)
	if err != nil {
		return nil, m.fail(ctx, action, err)
	}
	if created == nil {
		created = &s
	}

	m.notify(ctx, notify.Success(action, "Tạo lịch mới thành công!"))
	list := m.refreshAfter(ctx, action)
	m.record(ctx, Action{Name: ActionCreated, ScheduleID: created.ScheduleID, To: StatusPending, Record: created})
	return list, nil
}

// Update 整体更新，scheduleID 与 createdAt 保持原值
func (m *Manager) Update(ctx context.Context, id int, s Schedule) ([]Schedule, error) {
	const action = "update schedule"

	existing, err := m.current(ctx, id)
	if err != nil {
		return nil, m.fail(ctx, action, err)
	}
	s.ScheduleID = id
	s.CreatedAt = existing.CreatedAt
	if s.Status == "" {
		s.Status = existing.Status
	}

	if err := m.store.UpdateSchedule(ctx, s); err != nil {
		return nil, m.fail(ctx, action, err)
	}

	m.notify(ctx, notify.Success(action, "Cập nhật lịch thành công!"))
	list := m.refreshAfter(ctx, action)
	m.record(ctx, Action{Name: ActionUpdated, ScheduleID: id, To: s.Status, Record: &s})
	return list, nil
}

// Delete 删除预约，需要操作员确认
func (m *Manager) Delete(ctx context.Context, id int, confirm Confirmer) ([]Schedule, error) {
	const action = "delete schedule"

	if confirm == nil || !confirm.Confirm(ctx, PromptDelete) {
		return nil, ErrNotConfirmed
	}

	var from Status
	if existing, ok := m.find(id); ok {
		from = existing.Status
	}

	if err := m.store.DeleteSchedule(ctx, id); err != nil {
		return nil, m.fail(ctx, action, err)
	}

	m.notify(ctx, notify.Success(action, "Xóa lịch thành công!"))
	list := m.refreshAfter(ctx, action)
	m.record(ctx, Action{Name: ActionDeleted, ScheduleID: id, From: from})
	return list, nil
}

// refreshAfter 变更成功后按当前用户过滤重新拉取；失败只记录日志，返回旧视图
func (m *Manager) refreshAfter(ctx context.Context, action string) []Schedule {
	list, err := m.Refresh(ctx, m.UserFilter())
	if err != nil {
		logger.WithTrace(ctx, m.logger).Warn("Re-fetch after mutation failed",
			zap.String("action", action),
			zap.Error(err),
		)
		return m.View(Filter{})
	}
	return list
}

func (m *Manager) fail(ctx context.Context, action string, err error) error {
	logger.WithTrace(ctx, m.logger).Error(action+" failed", zap.Error(err))
	m.notify(ctx, notify.Failure(action, err))
	return fmt.Errorf("%s: %w", action, err)
}

func (m *Manager) notify(ctx context.Context, n notify.Notification) {
	if m.notifier != nil {
		m.notifier.Notify(ctx, n)
	}
}

func (m *Manager) record(ctx context.Context, a Action) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordScheduleAction(ctx, a); err != nil {
		logger.WithTrace(ctx, m.logger).Warn("Audit record failed",
			zap.String("action", a.Name),
			zap.Int("schedule_id", a.ScheduleID),
			zap.Error(err),
		)
	}
}

// IsOperatorError 属于操作员可纠正的错误（不是存储故障）
func IsOperatorError(err error) bool {
	return errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrNotConfirmed) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrUnknownStatus)
}

func cloneSchedules(list []Schedule) []Schedule {
	out := make([]Schedule, len(list))
	copy(out, list)
	return out
}
