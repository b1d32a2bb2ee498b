package dashboard

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recycleadmin/internal/model"
	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/logger"
)

const recentRewards = 5

// Lister 读取整张资源列表
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Sources 首页统计需要的资源
type Sources struct {
	Users         Lister[model.User]
	ScanHistories Lister[model.ScanHistory]
	Schedules     Lister[schedule.Schedule]
	Rewards       Lister[model.Reward]
	WasteTypes    Lister[model.WasteType]
}

// Summary 首页统计
type Summary struct {
	TotalUsers       int                     `json:"totalUsers"`
	TotalPoints      int                     `json:"totalPoints"`
	TotalScans       int                     `json:"totalScans"`
	TotalSchedules   int                     `json:"totalSchedules"`
	SchedulesByState map[schedule.Status]int `json:"schedulesByStatus"`
	RecentRewards    []model.Reward          `json:"recentRewards"`
	WasteTypes       []model.WasteType       `json:"wasteTypes,omitempty"`
}

type Service struct {
	src    Sources
	logger *zap.Logger
}

func NewService(src Sources, logger *zap.Logger) *Service {
	return &Service{src: src, logger: logger}
}

// Summary 并发拉取各资源；垃圾类型失败只省略该部分
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	log := logger.WithTrace(ctx, s.logger)

	var (
		users     []model.User
		scans     []model.ScanHistory
		schedules []schedule.Schedule
		rewards   []model.Reward
		types     []model.WasteType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.src.Users.List(gctx)
		return wrap("users", err)
	})
	g.Go(func() (err error) {
		scans, err = s.src.ScanHistories.List(gctx)
		return wrap("scan histories", err)
	})
	g.Go(func() (err error) {
		schedules, err = s.src.Schedules.List(gctx)
		return wrap("schedules", err)
	})
	g.Go(func() (err error) {
		rewards, err = s.src.Rewards.List(gctx)
		return wrap("rewards", err)
	})
	g.Go(func() error {
		var err error
		if types, err = s.src.WasteTypes.List(gctx); err != nil {
			log.Warn("Failed to load waste types for dashboard", zap.Error(err))
			types = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Failed to build dashboard summary", zap.Error(err))
		return nil, err
	}

	sum := &Summary{
		TotalUsers:       len(users),
		TotalScans:       len(scans),
		TotalSchedules:   len(schedules),
		SchedulesByState: schedule.CountByStatus(schedules),
		RecentRewards:    latestRewards(rewards, recentRewards),
		WasteTypes:       types,
	}
	for _, u := range users {
		sum.TotalPoints += u.Points
	}
	return sum, nil
}

func latestRewards(list []model.Reward, n int) []model.Reward {
	sorted := make([]model.Reward, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}
