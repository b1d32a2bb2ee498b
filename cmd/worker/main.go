package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recycleadmin/config"
	"recycleadmin/internal/mqhandler"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/schedule"
	"recycleadmin/pkg/db"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/mq"
	"recycleadmin/pkg/outbox"
	redisclient "recycleadmin/pkg/redis"
	"recycleadmin/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting recycleadmin worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox dispatcher
	dispatcher := outbox.NewDispatcher(outbox.NewRepository(dbConn), publisher, log).
		WithInterval(cfg.Outbox.Interval).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithMaxRetries(cfg.Outbox.MaxRetries)

	// MQ Consumer for schedule.status_changed
	log.Info("Initializing MQ consumer for schedule.status_changed...",
		zap.String("queue", cfg.MQ.Queue),
		zap.String("routing_key", schedule.ActionStatusChanged),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Queue, schedule.ActionStatusChanged, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	feed := notify.NewRedisFeed(rdb, cfg.Notify.Feed, cfg.Notify.TTL, cfg.Notify.Capacity, log)
	statusHandler := mqhandler.NewStatusChangedHandler(feed, util.NewDeduper(rdb, 24*time.Hour, log), log)
	consumer.SetHandler(statusHandler.Handle)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		log.Info("Starting schedule.status_changed consumer...")
		if err := consumer.StartConsuming(ctx); err != nil {
			log.Error("Status consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	log.Info("recycleadmin worker is fully initialized and running")

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down recycleadmin worker gracefully...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Warn("Timed out waiting for worker goroutines")
	}

	log.Info("recycleadmin worker shutdown complete")
}
