package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogError(logger, "graph build failed", assert.AnError, slog.String("component", "router"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "graph build failed", entry["msg"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, "router", entry["component"])
}

func TestLogErrorNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "ignored", assert.AnError)
		LogOperation(nil, "ignored")
		LogHTTPRequest(nil, "GET", "/", 200, 1)
	})
}

func TestLogOperationSkipsZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogOperation(logger, "catalogue_frozen",
		slog.Int("stops", 3),
		slog.Duration("duration", 0))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "catalogue_frozen", entry["msg"])
	assert.EqualValues(t, 3, entry["stops"])
	assert.NotContains(t, entry, "duration")
}

func TestLogOperationKeepsNonZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogOperation(logger, "graph_built", slog.Duration("duration", time.Millisecond))

	entry := decodeLine(t, &buf)
	assert.Contains(t, entry, "duration")
}

func TestLogHTTPRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogHTTPRequest(logger, "GET", "/api/where/stop/Universam", 404, 1.5, slog.String("request_id", "abc"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.EqualValues(t, 404, entry["status"])
	assert.Equal(t, 1.5, entry["duration_ms"])
	assert.Equal(t, "abc", entry["request_id"])
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

type errorCloser struct{ err error }

func (e *errorCloser) Close() error { return e.err }

func TestSafeCloseWithLogging(t *testing.T) {
	t.Run("logs error when close fails", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(&errorCloser{err: assert.AnError}, logger, "network_file")

		entry := decodeLine(t, &buf)
		assert.Equal(t, "failed to close resource", entry["msg"])
		assert.Equal(t, "network_file", entry["operation"])
	})

	t.Run("silent on success", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(&errorCloser{}, logger, "network_file")
		SafeCloseWithLogging(nil, logger, "network_file")

		assert.Empty(t, buf.String())
	})
}
