package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger_WritesLevelsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	l.Debug(ctx, "dbg")
	l.Info(ctx, "hello", "k", "v")
	l.Warn(ctx, "careful")
	l.Error(ctx, "broken")

	out := buf.String()
	assert.Contains(t, out, "dbg")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "k=v")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "broken")
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	child := l.With("component", "sync")
	child.Info(context.Background(), "started")

	assert.Contains(t, buf.String(), "component=sync")
}
