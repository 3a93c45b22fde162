package sdt

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "DEBUG"
	case LogInfo:
		return "INFO"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	case LogOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogDebug:
		return logrus.DebugLevel
	case LogWarn:
		return logrus.WarnLevel
	case LogError:
		return logrus.ErrorLevel
	case LogOff:
		// Entries are dropped before reaching logrus
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

type Fields map[string]interface{}

// Logger is a leveled logger carrying structured fields
type Logger struct {
	base   *logrus.Logger
	fields Fields
	// off is shared with derived loggers
	off *atomic.Bool
}

var (
	globalLogger     *Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		settings := GetGlobalSettings()
		logger := NewLogger(os.Stderr, parseLogLevel(settings.LogLevel))
		logger.SetFormat(settings.LogFormat)
		globalLoggerMu.Lock()
		globalLogger = logger
		globalLoggerMu.Unlock()
	})
}

func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LogDebug
	case "info":
		return LogInfo
	case "warn":
		return LogWarn
	case "error":
		return LogError
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

// NewLogger creates a logger writing text entries to w
func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	base.SetLevel(level.logrusLevel())
	off := &atomic.Bool{}
	off.Store(level == LogOff)
	return &Logger{
		base:   base,
		fields: make(Fields),
		off:    off,
	}
}

// SetLevel changes the level of the logger and every logger derived from it
func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(level.logrusLevel())
	l.off.Store(level == LogOff)
}

// SetFormat selects the entry formatter, "json" or "text"
func (l *Logger) SetFormat(format string) {
	if strings.EqualFold(format, "json") {
		l.base.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	l.base.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
}

func (l *Logger) IsDebugMode() bool {
	return !l.off.Load() && l.base.IsLevelEnabled(logrus.DebugLevel)
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

func (l *Logger) WithFields(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{base: l.base, fields: merged, off: l.off}
}

func (l *Logger) entry() *logrus.Entry {
	return l.base.WithFields(logrus.Fields(l.fields))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.off.Load() {
		return
	}
	l.entry().Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.off.Load() {
		return
	}
	l.entry().Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.off.Load() {
		return
	}
	l.entry().Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.off.Load() {
		return
	}
	l.entry().Errorf(format, args...)
}

// Global logging functions
func SetLogger(logger *Logger) {
	initGlobalLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

func GetLogger() *Logger {
	initGlobalLogger()
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

func WithFields(fields Fields) *Logger {
	return GetLogger().WithFields(fields)
}

// UpdateLoggerFromSettings applies the global settings to the global logger
func UpdateLoggerFromSettings() {
	settings := GetGlobalSettings()
	logger := GetLogger()
	logger.SetLevel(parseLogLevel(settings.LogLevel))
	logger.SetFormat(settings.LogFormat)
}
