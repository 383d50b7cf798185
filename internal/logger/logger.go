// Package logger provides the injectable log sink used by the emulator.
//
// A Logger keeps a bounded list of entries. Consecutive identical entries are
// collapsed into one with a repeat count. Entries below the configured level
// are dropped.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a configuration string into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Entry is a single line in the log
type Entry struct {
	Timestamp time.Time
	Level     Level
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s %s: %s", e.Level, e.Tag, e.Detail)
	if e.Repeated > 0 {
		fmt.Fprintf(&s, " (repeat x%d)", e.Repeated+1)
	}
	s.WriteString("\n")
	return s.String()
}

// DefaultMaxEntries is the size of a logger created with New
const DefaultMaxEntries = 256

// Logger is a bounded, level-filtered log. The zero value is not usable, use New.
type Logger struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
	level      Level
	echo       io.Writer
	discard    bool
}

// New creates a logger holding at most DefaultMaxEntries entries
func New(level Level) *Logger {
	return NewWithSize(level, DefaultMaxEntries)
}

// NewWithSize creates a logger holding at most maxEntries entries
func NewWithSize(level Level, maxEntries int) *Logger {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
		level:      level,
	}
}

// Discard is a logger that drops everything
var Discard = &Logger{discard: true, maxEntries: 1}

// SetLevel changes the minimum level that is recorded
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetEcho writes every new entry to output as well. A nil writer stops echoing.
func (l *Logger) SetEcho(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = output
}

// Log adds an entry
func (l *Logger) Log(level Level, tag, detail string) {
	if l == nil || l.discard {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")
	now := time.Now()

	if n := len(l.entries); n > 0 {
		last := &l.entries[n-1]
		if last.Tag == tag && last.Detail == detail && last.Level == level {
			last.Repeated++
			last.Timestamp = now
			return
		}
	}

	e := Entry{Timestamp: now, Level: level, Tag: tag, Detail: detail}
	l.entries = append(l.entries, e)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}

	if l.echo != nil {
		_, _ = io.WriteString(l.echo, e.String())
	}
}

// Logf adds a formatted entry
func (l *Logger) Logf(level Level, tag, format string, args ...interface{}) {
	if l == nil || l.discard {
		return
	}
	l.Log(level, tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(tag, format string, args ...interface{}) {
	l.Logf(LevelDebug, tag, format, args...)
}

func (l *Logger) Infof(tag, format string, args ...interface{}) {
	l.Logf(LevelInfo, tag, format, args...)
}

func (l *Logger) Warnf(tag, format string, args ...interface{}) {
	l.Logf(LevelWarn, tag, format, args...)
}

func (l *Logger) Errorf(tag, format string, args ...interface{}) {
	l.Logf(LevelError, tag, format, args...)
}

// Entries returns a copy of the current entries
func (l *Logger) Entries() []Entry {
	if l == nil || l.discard {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear removes all entries
func (l *Logger) Clear() {
	if l == nil || l.discard {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Write writes every entry to output
func (l *Logger) Write(output io.Writer) {
	l.Tail(output, -1)
}

// Tail writes the last number entries to output. A negative number writes
// everything.
func (l *Logger) Tail(output io.Writer, number int) {
	entries := l.Entries()
	if number >= 0 && number < len(entries) {
		entries = entries[len(entries)-number:]
	}
	for _, e := range entries {
		_, _ = io.WriteString(output, e.String())
	}
}
