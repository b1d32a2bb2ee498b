package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recycleadmin/pkg/circuitbreaker"
	"recycleadmin/pkg/config"
	"recycleadmin/pkg/logger"
	"recycleadmin/pkg/metrics"
	"recycleadmin/pkg/trace"
	"recycleadmin/pkg/util"
)

const maxErrorBody = 512

// Client 记录存储 REST 客户端，不做自动重试
type Client struct {
	http    *resty.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient 创建客户端；超时默认 10s
func NewClient(cfg config.StoreConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		Timeout:          cfg.Breaker.Timeout,
		IsFailure:        tripsBreaker,
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("Record store circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{http: httpClient, breaker: breaker, logger: logger}
}

// BreakerState 当前熔断状态，readyz 使用
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}

// do 执行一次调用：body 非 nil 时以 JSON 发送，out 非 nil 时解码响应
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	log := logger.WithTrace(ctx, c.logger).With(zap.String("op", op), zap.String("path", path))

	err := c.breaker.Execute(func() error {
		req := c.http.R().SetContext(ctx)
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.SetHeader(trace.HeaderName, traceID)
		}
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("%s: encode body: %w", op, err)
			}
			req.SetHeader("Content-Type", "application/json").SetBody(payload)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		if !resp.IsSuccess() {
			return &RemoteError{Op: op, StatusCode: resp.StatusCode(), Body: truncate(resp.String())}
		}
		if out != nil && len(strings.TrimSpace(resp.String())) > 0 {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%s: decode response: %w", op, err)
			}
		}
		return nil
	})

	status := "ok"
	if err != nil {
		status = util.ClassifyError(err)
		if errors.Is(err, ErrNotFound) {
			log.Debug("Record store returned not found")
		} else {
			log.Warn("Record store call failed", zap.String("kind", status), zap.Error(err))
		}
	}
	metrics.RecordStoreCall(op, status, time.Since(start))
	return err
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
