package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the printf-style leveled API used throughout the
// codebase. Always constructor-injected, never global.
type Logger struct {
	l *logrus.Logger
}

// NewLogger creates a logger writing text output to stderr. The level comes
// from LOG_LEVEL (debug/info/warn/error), defaulting to info.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	l.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
	return &Logger{l: l}
}

// NewTestLogger creates a quiet logger for tests.
func NewTestLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return &Logger{l: l}
}

func parseLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.l.Infof(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.l.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.l.Errorf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.l.Debugf(msg, args...)
}
