package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/pkg/trace"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestNewPublishingCarriesTraceID(t *testing.T) {
	ctx := trace.WithContext(context.Background(), "abc")
	msg, err := NewPublishing(ctx, map[string]int{"schedule_id": 7})
	require.NoError(t, err)

	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, "abc", msg.Headers[trace.HeaderName])
	require.NotEmpty(t, msg.MessageId)
	require.JSONEq(t, `{"schedule_id":7}`, string(msg.Body))
}

func TestNewPublishingRejectsUnmarshalable(t *testing.T) {
	_, err := NewPublishing(context.Background(), make(chan int))
	require.Error(t, err)
}

func TestDispatchSettlesMessages(t *testing.T) {
	log := zap.NewNop()

	ok := &fakeAck{}
	Dispatch(context.Background(), func(context.Context, json.RawMessage) error { return nil }, nil, ok, log)
	require.True(t, ok.acked)

	transient := &fakeAck{}
	Dispatch(context.Background(), func(context.Context, json.RawMessage) error { return errors.New("db down") }, nil, transient, log)
	require.True(t, transient.nacked)
	require.True(t, transient.requeued)

	permanent := &fakeAck{}
	Dispatch(context.Background(), func(context.Context, json.RawMessage) error {
		return Permanent(errors.New("bad payload"))
	}, nil, permanent, log)
	require.True(t, permanent.nacked)
	require.False(t, permanent.requeued)

	panicked := &fakeAck{}
	Dispatch(context.Background(), func(context.Context, json.RawMessage) error { panic("boom") }, nil, panicked, log)
	require.True(t, panicked.nacked)
	require.False(t, panicked.requeued)
}
