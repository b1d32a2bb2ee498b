package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/pkg/config"
	"recycleadmin/pkg/trace"
)

type stubRegistrar struct{}

func (stubRegistrar) Register(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"trace_id": trace.FromContext(c.Request.Context())})
	})
	g.GET("/boom", func(*gin.Context) { panic("boom") })
}

func newTestRouter(checks map[string]Check) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := stubRegistrar{}
	return NewRouter(Handlers{
		Schedules:     s,
		Users:         s,
		Vouchers:      s,
		VoucherUsers:  s,
		Rewards:       s,
		ScanHistories: s,
		Points:        s,
	}, checks, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyzReportsFailingCheck(t *testing.T) {
	r := newTestRouter(map[string]Check{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestReadyzOK(t *testing.T) {
	r := newTestRouter(map[string]Check{"db": func(context.Context) error { return nil }})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTraceHeaderPropagates(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	req.Header.Set(trace.HeaderName, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(trace.HeaderName))
	assert.JSONEq(t, `{"trace_id":"abc-123"}`, w.Body.String())

	// 非法值被替换为新生成的 ID
	req = httptest.NewRequest(http.MethodGet, "/schedules", nil)
	req.Header.Set(trace.HeaderName, "bad value!")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "bad value!", w.Header().Get(trace.HeaderName))
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))
}

func TestRecoveryReturns500(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServerAllowsConfiguredOrigin(t *testing.T) {
	srv := NewServer(config.ServerConfig{Port: "8080"}, []string{"http://admin.local"}, newTestRouter(nil))
	assert.Equal(t, ":8080", srv.Addr)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://admin.local")
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	assert.Equal(t, "http://admin.local", w.Header().Get("Access-Control-Allow-Origin"))
}
