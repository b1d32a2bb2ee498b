package httpserver

import (
	"net/http"

	"github.com/rs/cors"

	"recycleadmin/pkg/config"
	"recycleadmin/pkg/trace"
)

// NewServer 带 CORS 的 HTTP server，供前端 SPA 跨域调用
func NewServer(cfg config.ServerConfig, allowedOrigins []string, h http.Handler) *http.Server {
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", trace.HeaderName},
		ExposedHeaders:   []string{trace.HeaderName, "Content-Disposition"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      co.Handler(h),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
