package sdt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogDebug, "DEBUG"},
		{LogInfo, "INFO"},
		{LogWarn, "WARN"},
		{LogError, "ERROR"},
		{LogOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)
	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, `msg="warn 3"`)
	assert.Contains(t, out, "level=error")
	assert.False(t, logger.IsDebugMode())

	logger.SetLevel(LogDebug)
	assert.True(t, logger.IsDebugMode())
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), `msg="now visible"`)
}

func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOff)
	derived := logger.WithField("component", "test")

	logger.Error("dropped")
	derived.Error("dropped too")
	assert.Empty(t, buf.String())
	assert.False(t, derived.IsDebugMode())

	// Derived loggers follow the level of their parent
	logger.SetLevel(LogInfo)
	derived.Info("kept")
	assert.Contains(t, buf.String(), "component=test")
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)
	logger.SetFormat("json")

	child := logger.WithFields(Fields{"tag": "total", "id": "12345678"}).WithField("level", "run")
	child.Info("wrapped node")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "wrapped node", entry["msg"])
	assert.Equal(t, "total", entry["tag"])
	assert.Equal(t, "12345678", entry["id"])
	// logrus keeps colliding fields under a fields. prefix
	assert.Equal(t, "run", entry["fields.level"])
	assert.Equal(t, "info", entry["level"])

	// Fields do not leak back into the parent
	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "total")
}

func TestGlobalLogger(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))

	Debug("global %s", "debug")
	Info("global info")
	Warn("global warn")
	Error("global error")
	WithField("k", "v").Info("with field")
	WithFields(Fields{"a": 1}).Info("with fields")

	out := buf.String()
	for _, msg := range []string{"global debug", "global info", "global warn", "global error", "k=v", "a=1"} {
		assert.Contains(t, out, msg)
	}
}

func TestUpdateLoggerFromSettings(t *testing.T) {
	previousLogger := GetLogger()
	previousSettings := GetGlobalSettings()
	t.Cleanup(func() {
		SetLogger(previousLogger)
		SetGlobalSettings(previousSettings)
	})

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogInfo))

	settings := DefaultSettings()
	settings.LogLevel = "error"
	SetGlobalSettings(settings)

	Warn("suppressed")
	Error("reported")
	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "reported")
}
