package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, "warn", true)

	log.Info("dropped")
	log.Warn("kept", "post_id", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.EqualValues(t, 42, entry["post_id"])
}

func TestGocronLogger_ForwardsToSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, "debug", false)

	gl := logger.NewGocronLogger(log)
	gl.Error("job failed", "job", "reply")

	out := buf.String()
	assert.Contains(t, out, "job failed")
	assert.Contains(t, out, "source=gocron")
	assert.Contains(t, out, "job=reply")
}

func TestPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", logger.Preview("short", 10))
	assert.Equal(t, "abcdefg...", logger.Preview("abcdefghijklmnop", 10))
	assert.Equal(t, "...", logger.Preview("abcdef", 2))
	assert.Equal(t, "합격했...", logger.Preview("합격했어요 정말로", 6))
}
