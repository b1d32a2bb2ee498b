package form

import (
	"time"

	"recycleadmin/internal/model"
	"recycleadmin/internal/schedule"
)

// ScheduleForm 新建/编辑预约的表单
type ScheduleForm struct {
	UserID        Value `json:"userID"`
	Latitude      Value `json:"latitude"`
	Longitude     Value `json:"longitude"`
	WasteType     Value `json:"wasteType"`
	ScheduledDate Value `json:"scheduledDate"`
	Notes         Value `json:"notes"`
}

type scheduleInput struct {
	UserID        int       `json:"userID" validate:"gt=0"`
	Latitude      float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64   `json:"longitude" validate:"gte=-180,lte=180"`
	WasteType     string    `json:"wasteType" validate:"required,wastetype"`
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
	Notes         string    `json:"notes" validate:"max=500"`
}

// Parse 转换为预约记录；坐标留空时使用默认坐标。状态与创建时间由 Manager 决定。
func (f ScheduleForm) Parse() (schedule.Schedule, error) {
	p := newParser()
	in := scheduleInput{
		UserID:        p.int("userID", f.UserID),
		Latitude:      p.floatOr("latitude", f.Latitude, schedule.DefaultLatitude),
		Longitude:     p.floatOr("longitude", f.Longitude, schedule.DefaultLongitude),
		WasteType:     p.text(f.WasteType),
		ScheduledDate: p.date("scheduledDate", f.ScheduledDate),
		Notes:         p.text(f.Notes),
	}
	if err := check(p.errs, in); err != nil {
		return schedule.Schedule{}, err
	}

	return schedule.Schedule{
		UserID:        in.UserID,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		WasteType:     in.WasteType,
		ScheduledDate: model.NewTime(in.ScheduledDate),
		Notes:         in.Notes,
	}, nil
}

// StatusForm 状态变更请求
type StatusForm struct {
	Status  string `json:"status"`
	Confirm bool   `json:"confirm"`
}

func (f StatusForm) Parse() (schedule.Status, error) {
	s, err := schedule.ParseStatus(f.Status)
	if err != nil {
		return "", FieldErrors{"status": "must be one of Pending, Scheduled, Completed, Cancelled"}
	}
	return s, nil
}
