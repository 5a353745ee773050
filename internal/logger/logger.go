// Package logger provides the leveled logger shared by the engine and its
// adapters. Debug output is only written in verbose mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents logging severity.
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
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes timestamped, prefixed lines at or above a minimum level.
// A nil *Logger discards everything.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	minLevel Level
	prefix   string
}

// New creates a logger. A nil writer means stderr.
func New(out io.Writer, minLevel Level, prefix string) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		mu:       &sync.Mutex{},
		out:      out,
		minLevel: minLevel,
		prefix:   prefix,
	}
}

// Default returns an info level logger on stderr, or a debug level one when
// verbose is set.
func Default(verbose bool) *Logger {
	if verbose {
		return New(os.Stderr, LevelDebug, "")
	}
	return New(os.Stderr, LevelInfo, "")
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return New(io.Discard, LevelError+1, "")
}

// WithPrefix creates a sub-logger sharing the same output.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + "/" + prefix
	}
	return &Logger{
		mu:       l.mu,
		out:      l.out,
		minLevel: l.minLevel,
		prefix:   newPrefix,
	}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.minLevel
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := ""
	if l.prefix != "" {
		prefix = fmt.Sprintf("[%s] ", l.prefix)
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s %s %s%s\n", time.Now().Format("15:04:05.000"), level, prefix, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}
