package schedule

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/bradfitz/latlong"
)

// LatLng 地图坐标
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds 地图可视范围
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// MarkerAction 弹窗按钮
type MarkerAction struct {
	Label  string `json:"label"`
	Target Status `json:"target"`
}

// Marker 一个进行中预约的地图标记
type Marker struct {
	ScheduleID     int            `json:"scheduleID"`
	Position       LatLng         `json:"position"`
	Status         Status         `json:"status"`
	StatusLabel    string         `json:"statusLabel"`
	WasteType      string         `json:"wasteType"`
	UserID         int            `json:"userID"`
	UserEmail      string         `json:"userEmail,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	ScheduledLocal string         `json:"scheduledLocal"`
	TimeZone       string         `json:"timeZone"`
	Actions        []MarkerAction `json:"actions"`
}

// ActionFunc 标记按钮回调，只在所属 MarkerSet 存活期间有效
type ActionFunc func(ctx context.Context, scheduleID int, target Status, confirm Confirmer) error

// MarkerSet 一次地图渲染对应的标记集合
type MarkerSet struct {
	Center  LatLng   `json:"center"`
	Bounds  *Bounds  `json:"bounds,omitempty"`
	Markers []Marker `json:"markers"`

	mu       sync.Mutex
	onAction ActionFunc
}

// NewMarkerSet 只为 Pending / Scheduled 记录生成标记；没有标记时以默认坐标为中心
func NewMarkerSet(list []Schedule, onAction ActionFunc) *MarkerSet {
	ms := &MarkerSet{
		Center:   LatLng{Lat: DefaultLatitude, Lng: DefaultLongitude},
		Markers:  []Marker{},
		onAction: onAction,
	}

	var sumLat, sumLng float64
	minLat, minLng := math.Inf(1), math.Inf(1)
	maxLat, maxLng := math.Inf(-1), math.Inf(-1)

	for _, s := range list {
		if !s.Status.InFlight() {
			continue
		}
		ms.Markers = append(ms.Markers, newMarker(s))
		sumLat += s.Latitude
		sumLng += s.Longitude
		minLat, maxLat = math.Min(minLat, s.Latitude), math.Max(maxLat, s.Latitude)
		minLng, maxLng = math.Min(minLng, s.Longitude), math.Max(maxLng, s.Longitude)
	}

	if n := float64(len(ms.Markers)); n > 0 {
		ms.Center = LatLng{Lat: sumLat / n, Lng: sumLng / n}
		padLat := (maxLat - minLat) * 0.3
		padLng := (maxLng - minLng) * 0.3
		ms.Bounds = &Bounds{
			SouthWest: LatLng{Lat: minLat - padLat, Lng: minLng - padLng},
			NorthEast: LatLng{Lat: maxLat + padLat, Lng: maxLng + padLng},
		}
	}
	return ms
}

func newMarker(s Schedule) Marker {
	zone := TimeZoneAt(s.Latitude, s.Longitude)
	local := ""
	if !s.ScheduledDate.IsZero() {
		local = s.ScheduledDate.In(zone).Format("02/01/2006 15:04")
	}

	var actions []MarkerAction
	for _, next := range AllowedTransitions(s.Status) {
		if next == s.Status {
			continue
		}
		actions = append(actions, MarkerAction{Label: next.ActionLabel(), Target: next})
	}

	return Marker{
		ScheduleID:     s.ScheduleID,
		Position:       LatLng{Lat: s.Latitude, Lng: s.Longitude},
		Status:         s.Status,
		StatusLabel:    s.Status.Label(),
		WasteType:      s.WasteType,
		UserID:         s.UserID,
		UserEmail:      s.UserEmail,
		Notes:          s.Notes,
		ScheduledLocal: local,
		TimeZone:       zone.String(),
		Actions:        actions,
	}
}

// TimeZoneAt 按坐标查时区，查不到时返回 UTC
func TimeZoneAt(lat, lng float64) *time.Location {
	name := latlong.LookupZoneName(lat, lng)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Trigger 执行标记上的按钮，目标必须是该标记提供的动作
func (ms *MarkerSet) Trigger(ctx context.Context, scheduleID int, target Status, confirm Confirmer) error {
	ms.mu.Lock()
	fn := ms.onAction
	ms.mu.Unlock()
	if fn == nil {
		return ErrMarkersClosed
	}

	marker, ok := ms.marker(scheduleID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrScheduleNotFound, scheduleID)
	}
	for _, a := range marker.Actions {
		if a.Target == target {
			return fn(ctx, scheduleID, target, confirm)
		}
	}
	return fmt.Errorf("%w: %s on schedule %d", ErrMarkerActionInvalid, target, scheduleID)
}

// Close 注销回调，之后的 Trigger 返回 ErrMarkersClosed
func (ms *MarkerSet) Close() {
	ms.mu.Lock()
	ms.onAction = nil
	ms.mu.Unlock()
}

func (ms *MarkerSet) marker(id int) (Marker, bool) {
	for _, m := range ms.Markers {
		if m.ScheduleID == id {
			return m, true
		}
	}
	return Marker{}, false
}

// Markers 用当前视图生成标记集合，按钮回调走 RequestStatusChange
func (m *Manager) Markers(f Filter) *MarkerSet {
	return NewMarkerSet(m.View(f), func(ctx context.Context, id int, target Status, confirm Confirmer) error {
		_, err := m.RequestStatusChange(ctx, id, target, confirm)
		return err
	})
}
