package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestJSONLoggerCarriesOperationAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelDebug, "json", &buf).WithOperation(7, "name")

	logger.LogFinish(context.Background(), "completed", 12, time.Millisecond, nil)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "operation finished", record["msg"])
	assert.Equal(t, float64(7), record["op"])
	assert.Equal(t, "name", record["kind"])
	assert.Equal(t, "completed", record["outcome"])
}

func TestLogFinishReportsFailuresAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelError, "text", &buf)

	logger.LogFinish(context.Background(), "completed", 1, 0, nil)
	assert.Empty(t, buf.String(), "successful finishes are debug-level")

	logger.LogFinish(context.Background(), "failed", 1, 0, errors.New("sink closed"))
	assert.Contains(t, buf.String(), "operation failed")
	assert.Contains(t, buf.String(), "sink closed")
}

func TestNoopDiscards(t *testing.T) {
	logger := Noop()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
