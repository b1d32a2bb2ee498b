package mqhandler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/internal/notify"
	"recycleadmin/internal/repository"
	"recycleadmin/pkg/mq"
	"recycleadmin/pkg/util"
)

func newHandler(t *testing.T) (*StatusChangedHandler, *notify.Recorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec := notify.NewRecorder()
	return NewStatusChangedHandler(rec, util.NewDeduper(rdb, time.Hour, zap.NewNop()), zap.NewNop()), rec
}

func payload(t *testing.T, p repository.StatusChangedPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestStatusChangedAnnouncesOnce(t *testing.T) {
	h, rec := newHandler(t)
	msg := payload(t, repository.StatusChangedPayload{ScheduleID: 7, From: "Pending", To: "Scheduled", TraceID: "t-1"})

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	all := rec.All()
	require.Len(t, all, 1)
	assert.Equal(t, notify.KindInfo, all[0].Kind)
	assert.Equal(t, "Lịch #7: Đang chờ → Đã xác nhận", all[0].Message)
}

func TestStatusChangedRejectsBadPayload(t *testing.T) {
	h, rec := newHandler(t)

	err := h.Handle(context.Background(), json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, mq.ErrPermanent)

	err = h.Handle(context.Background(), payload(t, repository.StatusChangedPayload{From: "Pending", To: "Scheduled"}))
	assert.ErrorIs(t, err, mq.ErrPermanent)

	err = h.Handle(context.Background(), payload(t, repository.StatusChangedPayload{ScheduleID: 1, From: "Pending", To: "Done"}))
	assert.ErrorIs(t, err, mq.ErrPermanent)

	assert.Empty(t, rec.All())
}

func TestStatusChangedWithoutGuard(t *testing.T) {
	rec := notify.NewRecorder()
	h := NewStatusChangedHandler(rec, nil, zap.NewNop())
	msg := payload(t, repository.StatusChangedPayload{ScheduleID: 2, From: "Scheduled", To: "Completed"})

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Len(t, rec.All(), 2)
}
