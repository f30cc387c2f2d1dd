package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/logging"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := logging.New(slog.New(h)).With("session", 3)

	ctx := context.Background()
	l.Debug(ctx, "request done", "vertices", 12)
	l.Warn(ctx, "request failed", logging.Elided("coords", 24))

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "session=3")
	assert.Contains(t, out, "vertices=12")
	assert.Contains(t, out, `coords="[24 values elided]"`)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestNewNilUsesDefault(t *testing.T) {
	assert.NotNil(t, logging.New(nil))
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logging.NewZap(zap.New(core)).With("engine", "mock")

	ctx := context.Background()
	boom := errors.New("boom")
	l.Info(ctx, "session opened", "workers", 4, slog.Duration("took", time.Second))
	l.Error(ctx, "request failed", "error", boom, "dangling")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "session opened", entries[0].Message)
	assert.Equal(t, "mock", first["engine"])
	assert.EqualValues(t, 4, first["workers"])
	assert.Equal(t, time.Second, first["took"])

	second := entries[1]
	assert.Equal(t, zapcore.ErrorLevel, second.Level)
	assert.Equal(t, "boom", second.ContextMap()["error"])
	assert.Equal(t, "dangling", second.ContextMap()["!BADKEY"])
}

func TestDiscard(t *testing.T) {
	l := logging.Discard()
	l.Error(context.Background(), "dropped", "k", "v")
	assert.NotNil(t, l.With("k", "v"))
	assert.NotNil(t, logging.NewZap(nil))
}
