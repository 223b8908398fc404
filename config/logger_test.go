package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Environment: "production", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("courtesy notification not enqueued", "courtesyID", "c-1")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "c-1", rec["courtesyID"])

	dev := NewLogger(&Config{Environment: "development", LogLevel: "nonsense"}, &buf)
	assert.True(t, dev.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, dev.Enabled(context.Background(), slog.LevelDebug))

	debug := NewLogger(&Config{LogLevel: "DEBUG"}, &buf)
	assert.True(t, debug.Enabled(context.Background(), slog.LevelDebug))
}
