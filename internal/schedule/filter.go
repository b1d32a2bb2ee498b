package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Filter 对当前视图的本地过滤
type Filter struct {
	Status Status // 空表示全部
	Date   string // YYYY-MM-DD，按 UTC 日期比较
}

// ParseFilter 解析查询参数，status 为 "" 或 "all" 表示不过滤
func ParseFilter(status, date string) (Filter, error) {
	var f Filter
	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, "all") {
		parsed, err := ParseStatus(s)
		if err != nil {
			return Filter{}, err
		}
		f.Status = parsed
	}
	if d := strings.TrimSpace(date); d != "" {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return Filter{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
		}
		f.Date = d
	}
	return f, nil
}

func (f Filter) Match(s Schedule) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.Date != "" && s.ScheduledDate.UTC().Format(time.DateOnly) != f.Date {
		return false
	}
	return true
}

// Apply 返回匹配的记录（新切片）
func (f Filter) Apply(list []Schedule) []Schedule {
	out := make([]Schedule, 0, len(list))
	for _, s := range list {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// CountByStatus 按状态计数
func CountByStatus(list []Schedule) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, s := range list {
		counts[s.Status]++
	}
	return counts
}
