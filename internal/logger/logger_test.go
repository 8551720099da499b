package logger

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := current()
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(prev.Desugar()) })
	return logs
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "shown 3", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestScopedFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	ForUser(42).With("course", "algebra-1").Infof("opened")
	ForRequest("req-1").Warnf("retrying")
	Named("theme").Debugf("applied")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, int64(42), entries[0].ContextMap()["user_id"])
	assert.Equal(t, "algebra-1", entries[0].ContextMap()["course"])
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "theme", entries[2].LoggerName)
}

func TestForUpdate(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	ForUpdate(&models.Update{Message: &models.Message{Chat: models.Chat{ID: 7}}}).Infof("hello")
	ForUpdate(nil).Infof("anonymous")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])
	assert.Empty(t, entries[1].ContextMap())
}
