package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recycleadmin/pkg/trace"
)

func newFeed(t *testing.T, capacity int64) (*RedisFeed, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	feed := NewRedisFeed(rdb, "ops", 5*time.Second, capacity, zap.NewNop())
	feed.now = func() time.Time { return now }
	return feed, &now
}

func TestFailureMessageNamesAction(t *testing.T) {
	n := Failure("update status", errors.New("record store rejected request (502)"))
	require.Equal(t, KindError, n.Kind)
	require.Equal(t, "update status failed: record store rejected request (502)", n.Message)
}

func TestRedisFeedRecentNewestFirst(t *testing.T) {
	feed, _ := newFeed(t, 50)
	ctx := trace.WithContext(context.Background(), "t-9")

	feed.Notify(ctx, Success("create", "first"))
	feed.Notify(ctx, Success("create", "second"))

	items, err := feed.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "second", items[0].Message)
	require.Equal(t, "t-9", items[0].TraceID)
}

func TestRedisFeedCapsAndExpires(t *testing.T) {
	feed, now := newFeed(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		feed.Notify(ctx, Info("tick", fmt.Sprintf("n%d", i)))
	}
	items, err := feed.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "n4", items[0].Message)

	*now = now.Add(6 * time.Second)
	items, err = feed.Recent(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Notify(context.Background(), Success("delete", "ok"))
	r.Notify(context.Background(), Failure("delete", errors.New("boom")))

	require.Len(t, r.All(), 2)
	require.Len(t, r.OfKind(KindError), 1)
	r.Reset()
	require.Empty(t, r.All())
}
