package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		json  bool
		debug bool
		want  zapcore.Level
	}{
		{"console info", false, false, zapcore.InfoLevel},
		{"json debug", true, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.json, tt.debug)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	OrNop(logger).Info("kept")
	assert.Equal(t, 1, logs.Len())
}

func TestNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "server").Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "server", logs.All()[0].LoggerName)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"cut", "hello world", 5, "hello..."},
		{"runes", "résumé", 3, "rés..."},
		{"zero limit", "hello", 0, ""},
		{"trims", "  hi  ", 5, "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}
