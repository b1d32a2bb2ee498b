package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recycleadmin/config"
	"recycleadmin/internal/dashboard"
	"recycleadmin/internal/form"
	"recycleadmin/internal/handler"
	"recycleadmin/internal/httpserver"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/qr"
	"recycleadmin/internal/repository"
	"recycleadmin/internal/schedule"
	"recycleadmin/internal/store"
	"recycleadmin/pkg/circuitbreaker"
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

	log.Info("Starting recycleadmin api...",
		zap.String("store_base_url", cfg.Store.BaseURL),
		zap.String("db_host", cfg.DB.Host),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	ctx := context.Background()

	// DB（审计与 outbox）
	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Redis（通知 feed 与二维码 nonce）
	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	// MQ publisher，仅供 outbox 手动重放
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// 记录存储
	client := store.NewClient(cfg.Store, log)
	stores := store.NewStores(client)

	feed := notify.NewRedisFeed(rdb, cfg.Notify.Feed, cfg.Notify.TTL, cfg.Notify.Capacity, log)

	outboxRepo := outbox.NewRepository(dbConn)
	replayService := outbox.NewReplayService(outboxRepo, publisher, log)
	actionRepo := repository.NewActionLogRepository(dbConn, outboxRepo, log)

	manager := schedule.NewManager(stores.Schedules, feed, log).WithRecorder(actionRepo)

	signer := qr.NewSigner(cfg.QR.Secret)
	issuer := qr.NewIssuer(signer, cfg.QR.TTL, cfg.QR.Size, log)
	nonces := util.NewDeduper(rdb, 2*cfg.QR.TTL, log)
	kiosk := qr.NewKiosk(stores.Users, stores.Rewards, nonces, signer, log)

	summary := dashboard.NewService(dashboard.Sources{
		Users:         stores.Users,
		ScanHistories: stores.ScanHistories,
		Schedules:     stores.Schedules,
		Rewards:       stores.Rewards,
		WasteTypes:    stores.WasteTypes,
	}, log)

	handlers := httpserver.Handlers{
		Schedules: handler.NewScheduleHandler(manager, feed, log),
		Users:     handler.NewUserHandler(stores.Users, feed, log),
		Vouchers: handler.NewResourceHandler(handler.ResourceDef[model.Voucher, form.VoucherForm]{
			Name:  "voucher",
			Label: "voucher",
			Parse: form.VoucherForm.Parse,
			WithID: func(v model.Voucher, id int) model.Voucher {
				v.VoucherID = id
				return v
			},
		}, stores.Vouchers, feed, log),
		VoucherUsers: handler.NewResourceHandler(handler.ResourceDef[model.VoucherUser, form.VoucherUserForm]{
			Name:  "voucher user",
			Label: "voucher user",
			Parse: form.VoucherUserForm.Parse,
			WithID: func(v model.VoucherUser, id int) model.VoucherUser {
				v.IDUserVoucher = id
				return v
			},
		}, stores.VoucherUsers, feed, log),
		Rewards:       handler.NewRewardHandler(stores.Rewards, feed, log),
		ScanHistories: handler.NewScanHistoryHandler(stores.ScanHistories, feed, log),
		Points:        handler.NewPointHandler(stores.Points, feed, log),
		Catalog:       handler.NewCatalogHandler(stores.WasteTypes, summary, log),
		QR:            handler.NewQRHandler(issuer, kiosk, feed, log),
		Admin:         handler.NewAdminHandler(replayService, actionRepo, feed, log),
	}

	checks := map[string]httpserver.Check{
		"db": func(ctx context.Context) error { return dbConn.Ping(ctx) },
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		"store": func(context.Context) error {
			if client.BreakerState() == circuitbreaker.StateOpen {
				return circuitbreaker.ErrCircuitBreakerOpen
			}
			return nil
		},
	}

	router := httpserver.NewRouter(handlers, checks, log)
	srv := httpserver.NewServer(cfg.Server, cfg.CORS.AllowedOrigins, router)

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down recycleadmin api gracefully...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("recycleadmin api shutdown complete")
}
