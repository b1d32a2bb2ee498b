package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"

	"recycleadmin/pkg/circuitbreaker"
)

// 错误类别，用于指标标签与 HTTP 映射
const (
	KindTransport   = "transport"
	KindRejected    = "rejected"
	KindNotFound    = "not_found"
	KindCircuitOpen = "circuit_open"
	KindDecode      = "decode"
	KindCanceled    = "canceled"
	KindUnknown     = "unknown"
)

// HTTPStatusError 由携带远端状态码的错误实现
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// ClassifyError 将远端调用错误归类
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		return KindCircuitOpen
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.HTTPStatus() == 404 {
			return KindNotFound
		}
		return KindRejected
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindDecode
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindTransport
	}

	return KindUnknown
}

// IsRetryableError 网络类错误与 5xx 可由操作员手动重试
func IsRetryableError(err error) bool {
	switch ClassifyError(err) {
	case KindTransport, KindCircuitOpen:
		return true
	case KindRejected:
		var statusErr HTTPStatusError
		return errors.As(err, &statusErr) && statusErr.HTTPStatus() >= 500
	default:
		return false
	}
}
