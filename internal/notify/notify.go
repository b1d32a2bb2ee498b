package notify

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification 推送给操作员的一条提示
type Notification struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Action    string    `json:"action,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier 通知出口，实现方自行处理投递失败
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Success / Failure 构造常用通知
func Success(action, message string) Notification {
	return Notification{Kind: KindSuccess, Action: action, Message: message}
}

// Failure 消息格式为 "<action> failed: <reason>"
func Failure(action string, err error) Notification {
	return Notification{Kind: KindError, Action: action, Message: fmt.Sprintf("%s failed: %v", action, err)}
}

func Info(action, message string) Notification {
	return Notification{Kind: KindInfo, Action: action, Message: message}
}

// Recorder 内存实现，测试与无 Redis 时使用
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items = append(r.items, n)
}

// All 返回已记录通知的副本
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// OfKind 按类型过滤
func (r *Recorder) OfKind(kind Kind) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
