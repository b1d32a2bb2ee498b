package schedule

import (
	"recycleadmin/internal/model"
)

// 垃圾类型（封闭集合）
const (
	WasteOrganic    = "Hữu cơ"
	WasteRecyclable = "Tái chế"
	WasteHazardous  = "Nguy hại"
	WasteGeneral    = "General"
)

var WasteTypes = []string{WasteOrganic, WasteRecyclable, WasteHazardous, WasteGeneral}

// 新建表单的默认坐标（胡志明市）
const (
	DefaultLatitude  = 10.8231
	DefaultLongitude = 106.6297
)

// IsWasteType 是否属于可写入的垃圾类型
func IsWasteType(s string) bool {
	for _, w := range WasteTypes {
		if w == s {
			return true
		}
	}
	return false
}

// Schedule 上门回收预约
type Schedule struct {
	ScheduleID    int        `json:"scheduleID"`
	UserID        int        `json:"userID"`
	UserEmail     string     `json:"userEmail,omitempty"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	WasteType     string     `json:"wasteType"`
	ScheduledDate model.Time `json:"scheduledDate"`
	CreatedAt     model.Time `json:"createdAt"`
	Status        Status     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
}
