package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper 基于 Redis SETNX 的一次性占位
type Deduper struct {
	rdb      *redis.Client
	ttl      time.Duration
	logger   *zap.Logger
	failOpen bool
}

// NewDeduper redis 不可用时放行（fail open）
func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger, failOpen: true}
}

// FailClosed redis 不可用时拒绝，用于积分兑换这类不能重复执行的场景
func (d *Deduper) FailClosed() *Deduper {
	d.failOpen = false
	return d
}

// AcquireOnce 第一次占位返回 true，重复返回 false
func (d *Deduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	dedupKey := fmt.Sprintf("dedup:%s:%s", scope, key)

	ok, err := d.rdb.SetNX(ctx, dedupKey, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed",
				zap.String("scope", scope),
				zap.String("key", key),
				zap.Bool("allow", d.failOpen),
				zap.Error(err),
			)
		}
		return d.failOpen
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated key",
			zap.String("scope", scope),
			zap.String("dedup_key", dedupKey),
		)
	}
	return ok
}

// Release 释放占位，用于后续步骤失败后允许再次尝试
func (d *Deduper) Release(ctx context.Context, scope, key string) {
	if err := d.rdb.Del(ctx, fmt.Sprintf("dedup:%s:%s", scope, key)).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Redis dedup release failed", zap.String("scope", scope), zap.Error(err))
	}
}
