package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelInfo)

	log.Debug("hidden line")
	log.Info("Server starting", "addr", ":8080")

	out := buf.String()
	assert.Contains(t, out, "Server starting")
	assert.Contains(t, out, ":8080")
	assert.NotContains(t, out, "hidden line")
	assert.Same(t, log, slog.Default())
}

func TestNewWithWriter_AddsRequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelInfo).With("component", "auth")

	ctx := WithRequestID(context.Background(), "req-42")
	log.InfoContext(ctx, "User registered")
	slog.WarnContext(ctx, "Default logger line")
	log.Info("No context line")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 3) {
		assert.Contains(t, string(lines[0]), "req-42")
		assert.Contains(t, string(lines[0]), "auth")
		assert.Contains(t, string(lines[1]), "req-42")
		assert.NotContains(t, string(lines[2]), "req-42")
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(WithRequestID(context.Background(), "abc")))
}
