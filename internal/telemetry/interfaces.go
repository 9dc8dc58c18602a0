package telemetry

import (
	"log"

	"go.uber.org/zap"
)

// Logger exposes the logging capabilities required by client components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// WrapZap adapts a sugared zap logger to the Logger interface. Messages are
// written at info level.
func WrapZap(logger *zap.SugaredLogger) Logger {
	return &zapAdapter{logger: logger}
}

type zapAdapter struct {
	logger *zap.SugaredLogger
}

func (z *zapAdapter) Printf(format string, args ...any) {
	if z == nil || z.logger == nil {
		return
	}
	z.logger.Infof(format, args...)
}

// Metrics exposes the telemetry methods required by client components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// NopMetrics discards every update.
func NopMetrics() Metrics {
	return nopMetrics{}
}
