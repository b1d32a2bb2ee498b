package httpserver

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recycleadmin/internal/handler"
)

// Registrar 自行挂载路由的资源处理器
type Registrar interface {
	Register(g *gin.RouterGroup)
}

// Handlers 路由需要的全部处理器
type Handlers struct {
	Schedules     Registrar
	Users         Registrar
	Vouchers      Registrar
	VoucherUsers  Registrar
	Rewards       Registrar
	ScanHistories Registrar
	Points        Registrar
	Catalog       *handler.CatalogHandler
	QR            *handler.QRHandler
	Admin         *handler.AdminHandler
}

// Check 就绪检查项
type Check func(ctx context.Context) error

func NewRouter(h Handlers, checks map[string]Check, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(logger), TraceMiddleware(), RequestLogMiddleware(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyHandler(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Schedules.Register(r.Group("/schedules"))
	h.Users.Register(r.Group("/users"))
	h.Vouchers.Register(r.Group("/vouchers"))
	h.VoucherUsers.Register(r.Group("/voucher-users"))
	h.Rewards.Register(r.Group("/rewards"))
	h.ScanHistories.Register(r.Group("/scan-histories"))
	h.Points.Register(r.Group("/points"))

	r.GET("/waste-types", h.Catalog.WasteTypes)
	r.GET("/dashboard/summary", h.Catalog.Summary)

	r.POST("/qr/issue", h.QR.Issue)
	r.POST("/kiosk/redeem", h.QR.Redeem)

	r.GET("/notifications", h.Admin.Notifications)
	admin := r.Group("/admin")
	{
		admin.GET("/actions", h.Admin.Actions)
		admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return r
}

func readyHandler(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
