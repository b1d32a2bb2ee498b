package store

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound 记录存储返回 404
var ErrNotFound = errors.New("record not found")

// TransportError 请求未得到响应（网络、超时、取消）
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("record store unreachable (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError 记录存储返回非 2xx
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("record store rejected request (%d)", e.StatusCode)
	}
	return fmt.Sprintf("record store rejected request (%d): %s", e.StatusCode, e.Body)
}

// HTTPStatus 供 util.ClassifyError 使用
func (e *RemoteError) HTTPStatus() int { return e.StatusCode }

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// tripsBreaker 只有网络错误与 5xx 计入熔断
func tripsBreaker(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode >= 500
	}
	return false
}
