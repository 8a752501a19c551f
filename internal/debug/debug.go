// Package debug carries the --debug flag in the context and configures slog.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// redactedKeys are attribute keys whose values never reach the log.
var redactedKeys = map[string]bool{
	"password":      true,
	"authorization": true,
}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// SetupLogger installs a text handler on stderr as the default slog logger.
func SetupLogger(debugEnabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, debugEnabled))
}

// NewLogger returns a text logger at debug level when enabled and warn level
// otherwise. Password and Authorization attributes are redacted.
func NewLogger(w io.Writer, debugEnabled bool) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})
	return slog.New(handler)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
