package store

import (
	"context"
	"fmt"
	"net/url"

	"recycleadmin/internal/model"
)

type ScanHistoryStore struct {
	*Resource[model.ScanHistory]
}

func NewScanHistoryStore(c *Client) *ScanHistoryStore {
	return &ScanHistoryStore{Resource: NewResource[model.ScanHistory](c, "scan histories", PathScanHistories)}
}

// Search 按关键字搜索
func (s *ScanHistoryStore) Search(ctx context.Context, keyword string) ([]model.ScanHistory, error) {
	path := PathScanHistories + "/search?keyword=" + url.QueryEscape(keyword)
	return listAt[model.ScanHistory](ctx, s.c, "search scan histories", path)
}

// 按用户查询时每项包在 historyscan 中，并附带垃圾类型名称
type wrappedScan struct {
	HistoryScan struct {
		model.ScanHistory
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"historyscan"`
}

// ListByUser 展开 historyscan 包装
func (s *ScanHistoryStore) ListByUser(ctx context.Context, userID int) ([]model.ScanHistory, error) {
	items, err := listAt[wrappedScan](ctx, s.c, "list scan histories by user", fmt.Sprintf("%s/user/%d", PathScanHistories, userID))
	if err != nil {
		return nil, err
	}
	out := make([]model.ScanHistory, 0, len(items))
	for _, it := range items {
		h := it.HistoryScan.ScanHistory
		if h.UserID == 0 {
			h.UserID = userID
		}
		h.WasteName = it.HistoryScan.Name
		h.WasteDescription = it.HistoryScan.Description
		out = append(out, h)
	}
	return out, nil
}

func (s *ScanHistoryStore) MonthlyStats(ctx context.Context, userID int) ([]model.MonthlyStats, error) {
	return listAt[model.MonthlyStats](ctx, s.c, "monthly scan stats", fmt.Sprintf("%s/GetMonthlyStats/%d", PathScanHistories, userID))
}
