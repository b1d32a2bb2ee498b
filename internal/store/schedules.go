package store

import (
	"context"
	"fmt"
	"net/http"

	"recycleadmin/internal/schedule"
)

// ScheduleStore 实现 schedule.Store
type ScheduleStore struct {
	*Resource[schedule.Schedule]
}

func NewScheduleStore(c *Client) *ScheduleStore {
	return &ScheduleStore{Resource: NewResource[schedule.Schedule](c, "schedules", PathSchedules)}
}

func (s *ScheduleStore) ListSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	return s.List(ctx)
}

// ListSchedulesByUser 404 表示该用户没有预约
func (s *ScheduleStore) ListSchedulesByUser(ctx context.Context, userID int) ([]schedule.Schedule, error) {
	return listAt[schedule.Schedule](ctx, s.c, "list schedules by user", fmt.Sprintf("%s/GetdataUserID/%d", PathSchedules, userID))
}

func (s *ScheduleStore) CreateSchedule(ctx context.Context, sc schedule.Schedule) (*schedule.Schedule, error) {
	return s.Create(ctx, sc)
}

func (s *ScheduleStore) UpdateSchedule(ctx context.Context, sc schedule.Schedule) error {
	return s.Update(ctx, sc.ScheduleID, sc)
}

// UpdateScheduleStatus 请求体是 JSON 字符串，例如 "Scheduled"
func (s *ScheduleStore) UpdateScheduleStatus(ctx context.Context, id int, status schedule.Status) error {
	path := fmt.Sprintf("%s/updateStatus/%d", PathSchedules, id)
	return s.c.do(ctx, "update schedule status", http.MethodPut, path, string(status), nil)
}

func (s *ScheduleStore) DeleteSchedule(ctx context.Context, id int) error {
	return s.Delete(ctx, id)
}

var _ schedule.Store = (*ScheduleStore)(nil)
