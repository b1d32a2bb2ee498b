package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/pkg/circuitbreaker"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatus() int { return int(s) }

func TestClassifyError(t *testing.T) {
	var syntax *json.SyntaxError
	decodeErr := json.Unmarshal([]byte("{"), &map[string]any{})
	require.True(t, errors.As(decodeErr, &syntax))

	cases := map[string]error{
		KindCircuitOpen: fmt.Errorf("list: %w", circuitbreaker.ErrCircuitBreakerOpen),
		KindCanceled:    context.Canceled,
		KindTransport:   &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")},
		KindNotFound:    fmt.Errorf("wrap: %w", statusErr(404)),
		KindRejected:    statusErr(400),
		KindDecode:      decodeErr,
		KindUnknown:     errors.New("mystery"),
	}
	for want, err := range cases {
		require.Equal(t, want, ClassifyError(err), err.Error())
	}
	require.Empty(t, ClassifyError(nil))
}

func TestIsRetryableError(t *testing.T) {
	require.True(t, IsRetryableError(statusErr(503)))
	require.False(t, IsRetryableError(statusErr(422)))
	require.True(t, IsRetryableError(context.DeadlineExceeded))
	require.False(t, IsRetryableError(errors.New("mystery")))
}

func TestDeduperAcquireOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDeduper(rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.True(t, d.AcquireOnce(ctx, "qr", "nonce-1"))
	require.False(t, d.AcquireOnce(ctx, "qr", "nonce-1"))
	require.True(t, d.AcquireOnce(ctx, "qr", "nonce-2"))

	d.Release(ctx, "qr", "nonce-1")
	require.True(t, d.AcquireOnce(ctx, "qr", "nonce-1"))

	mr.FastForward(2 * time.Minute)
	require.True(t, d.AcquireOnce(ctx, "qr", "nonce-2"))
}

func TestDeduperRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	ctx := context.Background()
	require.True(t, NewDeduper(rdb, time.Minute, zap.NewNop()).AcquireOnce(ctx, "s", "k"))
	require.False(t, NewDeduper(rdb, time.Minute, zap.NewNop()).FailClosed().AcquireOnce(ctx, "s", "k"))
}
