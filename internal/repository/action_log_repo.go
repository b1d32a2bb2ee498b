package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/db"
	"recycleadmin/pkg/outbox"
	"recycleadmin/pkg/trace"
)

const resourceSchedule = "schedule"

// ActionLog 操作员审计记录
type ActionLog struct {
	ID         int64           `json:"id"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID int64           `json:"resource_id"`
	Detail     json.RawMessage `json:"detail"`
	TraceID    string          `json:"trace_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// StatusChangedPayload schedule.status_changed 事件内容
type StatusChangedPayload struct {
	ScheduleID int    `json:"schedule_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	TraceID    string `json:"trace_id,omitempty"`
}

// SchedulePayload schedule.created / updated / deleted 事件内容
type SchedulePayload struct {
	ScheduleID int                `json:"schedule_id"`
	Record     *schedule.Schedule `json:"record,omitempty"`
	TraceID    string             `json:"trace_id,omitempty"`
}

// ActionLogRepository 审计表与 outbox 同事务写入
type ActionLogRepository struct {
	db         db.DBTX
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewActionLogRepository(conn db.DBTX, outboxRepo *outbox.Repository, logger *zap.Logger) *ActionLogRepository {
	return &ActionLogRepository{db: conn, outboxRepo: outboxRepo, logger: logger}
}

// RecordScheduleAction 写入审计记录并插入对应的 outbox 事件
func (r *ActionLogRepository) RecordScheduleAction(ctx context.Context, a schedule.Action) error {
	traceID := trace.FromContext(ctx)
	payload := eventPayload(a, traceID)
	detail, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal action detail: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO operator_actions (action, resource, resource_id, detail, trace_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	if err := tx.QueryRow(ctx, query, a.Name, resourceSchedule, int64(a.ScheduleID), detail, traceID).Scan(&id); err != nil {
		return fmt.Errorf("failed to insert operator action: %w", err)
	}

	aggregateID := int64(a.ScheduleID)
	if _, err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, resourceSchedule, &aggregateID, a.Name, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit operator action: %w", err)
	}

	r.logger.Debug("Operator action recorded",
		zap.Int64("action_id", id),
		zap.String("action", a.Name),
		zap.Int("schedule_id", a.ScheduleID),
		zap.String("trace_id", traceID),
	)
	return nil
}

func eventPayload(a schedule.Action, traceID string) interface{} {
	if a.Name == schedule.ActionStatusChanged {
		return StatusChangedPayload{
			ScheduleID: a.ScheduleID,
			From:       string(a.From),
			To:         string(a.To),
			TraceID:    traceID,
		}
	}
	return SchedulePayload{ScheduleID: a.ScheduleID, Record: a.Record, TraceID: traceID}
}

// ListRecent 最近的审计记录，resourceID 为 0 时不过滤
func (r *ActionLogRepository) ListRecent(ctx context.Context, resourceID int64, limit int) ([]ActionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, action, resource, resource_id, detail, trace_id, created_at
		FROM operator_actions
		WHERE ($1 = 0 OR resource_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operator actions: %w", err)
	}
	defer rows.Close()

	var logs []ActionLog
	for rows.Next() {
		var l ActionLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Resource, &l.ResourceID, &l.Detail, &l.TraceID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operator action: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operator actions: %w", err)
	}
	return logs, nil
}
