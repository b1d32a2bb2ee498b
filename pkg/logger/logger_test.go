package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"recycleadmin/pkg/trace"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	require.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	require.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}

func TestWithTraceAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTrace(trace.WithContext(context.Background(), "t-1"), base).Info("hello")
	WithTrace(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "t-1", entries[0].ContextMap()[trace.TraceIDKey])
	require.NotContains(t, entries[1].ContextMap(), trace.TraceIDKey)
}
