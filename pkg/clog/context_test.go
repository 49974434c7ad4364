package clog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextAttributes(t *testing.T) {
	ctx := ContextWithSlog(context.Background())
	AddTask(ctx, "T1", "alice")
	AddAttributes(ctx, map[string]any{"nested": map[string]any{"a": 1}})
	AddAttributes(ctx, map[string]any{"nested": map[string]any{"b": 2}})
	AddError(ctx, errors.New("boom"))

	attrs := GetAttributes(ctx)
	assert.Equal(t, "T1", attrs[TaskIDAttributeKey])
	assert.Equal(t, "alice", attrs[WorkerIDAttributeKey])
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, attrs["nested"])
	assert.EqualError(t, GetError(ctx), "boom")
}

func TestContextAttributes_NoSlogContext(t *testing.T) {
	ctx := context.Background()
	AddTask(ctx, "T1", "")
	assert.Nil(t, GetAttributes(ctx))
	assert.Nil(t, GetError(ctx))
}

func TestConnectTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAttributesHandler(NewConnectTextHandler(&buf, WithColor(false))))
	ctx := ContextWithSlog(context.Background())
	AddTask(ctx, "T1", "alice")
	logger.InfoContext(ctx, "claimed", "seconds", 12)

	out := buf.String()
	assert.Contains(t, out, "INFO T1 alice \"claimed\"")
	assert.Contains(t, out, "    seconds=12")
}

func TestGetAttributesIsACopy(t *testing.T) {
	ctx := ContextWithSlog(context.Background())
	AddAttributes(ctx, map[string]any{"review": map[string]any{"rating": 4}})

	snapshot := GetAttributes(ctx)
	AddAttributes(ctx, map[string]any{"review": map[string]any{"decision": "approve"}})

	assert.Equal(t, map[string]any{"rating": 4}, snapshot["review"])
	assert.Equal(t, map[string]any{"rating": 4, "decision": "approve"}, GetAttributes(ctx)["review"])
}

func TestConnectTextHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConnectTextHandler(&buf, WithColor(false), WithLevel(slog.LevelDebug)))
	logger.WithGroup("session").Debug("tick", "elapsed", 4, slog.Group("limits", "max", 600))

	out := buf.String()
	assert.Contains(t, out, "DEBUG \"tick\"")
	assert.Contains(t, out, "    session.elapsed=4\n")
	assert.Contains(t, out, "    session.limits.max=600\n")
}
