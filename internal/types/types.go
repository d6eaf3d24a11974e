// Package types provides internal types shared across treesit packages.
package types

import (
	"context"
	"log/slog"
)

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (characters, lexed tokens, reused nodes).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// ctx is a package-level context for logging.
var ctx = context.Background()

// Logger wraps slog.Logger with nil-safe helpers.
type Logger struct {
	L *slog.Logger
}

// Enabled returns true if logging is enabled at the given level.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(ctx, level)
}

// Log emits a log message if logging is enabled.
func (l *Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L != nil && l.L.Enabled(ctx, level) {
		l.L.LogAttrs(ctx, level, msg, attrs...)
	}
}

// TraceEnabled returns true if trace-level logging is enabled.
func (l *Logger) TraceEnabled() bool {
	return l.Enabled(LevelTrace)
}

// Trace emits a trace-level log.
func (l *Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}

// Span is a half-open range [Start, End) of rune indices in decoded input.
type Span struct {
	Start int // inclusive
	End   int // exclusive
}

// NewSpan creates a new span.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span covers no runes.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}
