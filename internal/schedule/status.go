package schedule

import (
	"fmt"
	"strings"
)

// Status 预约状态，字符串值与记录存储一致
type Status string

const (
	StatusPending   Status = "Pending"
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses 已知状态，按生命周期顺序
var Statuses = []Status{StatusPending, StatusScheduled, StatusCompleted, StatusCancelled}

// 当前状态 → 可选状态（当前状态在首位）
var transitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusScheduled, StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCompleted},
	StatusCancelled: {StatusCancelled},
}

var labels = map[Status]string{
	StatusPending:   "Đang chờ",
	StatusScheduled: "Đã xác nhận",
	StatusCompleted: "Hoàn thành",
	StatusCancelled: "Đã hủy",
}

var actionLabels = map[Status]string{
	StatusScheduled: "Xác nhận lịch",
	StatusCompleted: "Đã thu gom",
	StatusCancelled: "Hủy",
}

// AllowedTransitions 返回可选的下一状态，当前状态在首位。未知状态只允许保持不变。
func AllowedTransitions(current Status) []Status {
	next, ok := transitions[current]
	if !ok {
		return []Status{current}
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition 判断 from → to 是否合法（包括保持不变）
func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions(from) {
		if s == to {
			return true
		}
	}
	return false
}

// Known 是否为已知状态
func (s Status) Known() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal 没有其他出口的状态；未知状态同样视为终态
func (s Status) IsTerminal() bool {
	return len(AllowedTransitions(s)) == 1
}

// InFlight 待处理或已确认
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusScheduled
}

// Label 展示文案，未知状态原样返回
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// ActionLabel 地图弹窗按钮文案
func (s Status) ActionLabel() string {
	if l, ok := actionLabels[s]; ok {
		return l
	}
	return s.Label()
}

// RequiresConfirmation 取消必须经操作员确认
func (s Status) RequiresConfirmation() bool {
	return s == StatusCancelled
}

// ParseStatus 解析状态，大小写不敏感
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range Statuses {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}
