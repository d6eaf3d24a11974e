package treesit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/golangsnmp/treesit/internal/types"
)

// LogType is the category of a log event.
type LogType uint8

const (
	LogTypeParse LogType = iota
	LogTypeLex
)

func (t LogType) String() string {
	switch t {
	case LogTypeParse:
		return "Parse"
	case LogTypeLex:
		return "Lex"
	}
	return "Unknown"
}

// Logger receives parse and lex events. The message is only valid for the
// duration of the call.
type Logger interface {
	Log(typ LogType, msg string)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(typ LogType, msg string)

// Log calls f.
func (f LoggerFunc) Log(typ LogType, msg string) { f(typ, msg) }

// ConsoleLogger writes one Log{log_type=..., buffer="..."} line per event.
type ConsoleLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleLogger returns a ConsoleLogger writing to w, or to stdout when
// w is nil.
func NewConsoleLogger(w io.Writer) *ConsoleLogger {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleLogger{w: w}
}

// Log writes the event.
func (c *ConsoleLogger) Log(typ LogType, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "Log{log_type=%s, buffer=\"%s\"}\n", typ, msg)
}

// SlogLogger forwards events to a *slog.Logger. Parse events are logged at
// Debug and lex events at LevelTrace.
type SlogLogger struct {
	log types.Logger
}

// NewSlogLogger returns a SlogLogger. A nil logger discards everything.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{log: types.Logger{L: logger}}
}

// Log forwards the event.
func (s *SlogLogger) Log(typ LogType, msg string) {
	if typ == LogTypeLex {
		s.log.Trace("lex", slog.String("event", msg))
		return
	}
	s.log.Log(slog.LevelDebug, "parse", slog.String("event", msg))
}

// LogEntry is one recorded event.
type LogEntry struct {
	Type    LogType
	Message string
}

// CollectLogger records events in memory. With a positive limit it keeps
// only the most recent limit events.
type CollectLogger struct {
	mu      sync.Mutex
	limit   int
	entries []LogEntry
	next    int
	dropped int
}

// NewCollectLogger returns a CollectLogger. A limit of zero or less keeps
// everything.
func NewCollectLogger(limit int) *CollectLogger {
	return &CollectLogger{limit: limit}
}

// Log records the event.
func (c *CollectLogger) Log(typ LogType, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := LogEntry{Type: typ, Message: strings.Clone(msg)}
	if c.limit <= 0 || len(c.entries) < c.limit {
		c.entries = append(c.entries, e)
		return
	}
	c.entries[c.next] = e
	c.next = (c.next + 1) % c.limit
	c.dropped++
}

// Entries returns the recorded events, oldest first.
func (c *CollectLogger) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, 0, len(c.entries))
	out = append(out, c.entries[c.next:]...)
	return append(out, c.entries[:c.next]...)
}

// Count returns the number of retained events of typ whose message starts
// with prefix.
func (c *CollectLogger) Count(typ LogType, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Type == typ && strings.HasPrefix(e.Message, prefix) {
			n++
		}
	}
	return n
}

// Dropped returns the number of events evicted by the limit.
func (c *CollectLogger) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Reset discards all recorded events.
func (c *CollectLogger) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
	c.next = 0
	c.dropped = 0
}
