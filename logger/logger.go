package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

// ParseLevel maps a configured level onto zap. Unknown levels log everything.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a console logger on stdout.
func New(level string) *Logger {
	atomic := zap.NewAtomicLevelAt(ParseLevel(level))

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), atomic)

	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		level:         atomic,
	}
}

// SetLevel changes the level of this logger and everything derived from it.
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(ParseLevel(level))
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *zap.SugaredLogger {
	return l.SugaredLogger.Named(name)
}
