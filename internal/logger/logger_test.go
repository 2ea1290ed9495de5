package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var debug, warn bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("session.id", "s1").WithGroup("bot")

	log.Debug("searching", "depth", 2)
	log.Warn("slow search", "nodes", 82)

	assert.Contains(t, debug.String(), "searching")
	assert.Contains(t, debug.String(), "session.id=s1")
	assert.Contains(t, debug.String(), "bot.depth=2")
	assert.NotContains(t, warn.String(), "searching")
	assert.Contains(t, warn.String(), "bot.nodes=82")
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := NewMultiHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandlerKeepsGoingAfterError(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, nil)
	h := NewMultiHandler(failingHandler{text}, text)

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "move played", 0)
	err := h.Handle(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "move played")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
