package api

import (
	"fmt"
	"log/slog"
)

// RequestLogger receives the transport's diagnostic output. Its method set
// matches resty.Logger, so the same value is handed to the network adapter.
type RequestLogger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// NoopLogger discards everything. It is the default.
type NoopLogger struct{}

func (l *NoopLogger) Errorf(_ string, _ ...any) {}
func (l *NoopLogger) Warnf(_ string, _ ...any)  {}
func (l *NoopLogger) Debugf(_ string, _ ...any) {}

// SlogLogger forwards to a slog.Logger. A nil Logger uses slog.Default().
type SlogLogger struct {
	Logger *slog.Logger
}

func (l *SlogLogger) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *SlogLogger) Errorf(format string, v ...any) {
	l.logger().Error(fmt.Sprintf(format, v...), "component", "transport")
}

func (l *SlogLogger) Warnf(format string, v ...any) {
	l.logger().Warn(fmt.Sprintf(format, v...), "component", "transport")
}

func (l *SlogLogger) Debugf(format string, v ...any) {
	l.logger().Debug(fmt.Sprintf(format, v...), "component", "transport")
}
