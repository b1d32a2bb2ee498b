package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/metrics"
	"recycleadmin/pkg/trace"
)

// RedisFeed 将通知写入 notify:<feed> 列表，最新在前，超出容量的旧条目被截断
type RedisFeed struct {
	rdb      *redis.Client
	key      string
	ttl      time.Duration
	capacity int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewRedisFeed(rdb *redis.Client, feed string, ttl time.Duration, capacity int64, logger *zap.Logger) *RedisFeed {
	if capacity <= 0 {
		capacity = 50
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisFeed{
		rdb:      rdb,
		key:      "notify:" + feed,
		ttl:      ttl,
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *RedisFeed) Notify(ctx context.Context, n Notification) {
	now := f.now()
	n.CreatedAt = now
	n.ExpiresAt = now.Add(f.ttl)
	if n.TraceID == "" {
		n.TraceID = trace.FromContext(ctx)
	}
	metrics.IncrementNotification(string(n.Kind))

	log := logger.WithTrace(ctx, f.logger).With(
		zap.String("kind", string(n.Kind)),
		zap.String("action", n.Action),
	)

	body, err := json.Marshal(n)
	if err != nil {
		log.Error("Failed to encode notification", zap.Error(err))
		return
	}

	pipe := f.rdb.TxPipeline()
	pipe.LPush(ctx, f.key, body)
	pipe.LTrim(ctx, f.key, 0, f.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn("Failed to push notification", zap.String("message", n.Message), zap.Error(err))
		return
	}
	log.Debug("Notification pushed", zap.String("message", n.Message))
}

// Recent 返回未过期的通知，最新在前
func (f *RedisFeed) Recent(ctx context.Context) ([]Notification, error) {
	raw, err := f.rdb.LRange(ctx, f.key, 0, f.capacity-1).Result()
	if err != nil {
		return nil, err
	}

	now := f.now()
	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			f.logger.Warn("Skipping malformed notification", zap.Error(err))
			continue
		}
		if n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}
