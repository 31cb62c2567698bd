package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	// Log levels from least to most restrictive
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelNone {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return levelNames[l]
}

// Logger writes leveled, timestamped lines. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  LogLevel
	colors map[LogLevel]*color.Color
}

// New creates a new Logger with the given settings
func New(out io.Writer, verbose bool, useColors bool) *Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	colors := map[LogLevel]*color.Color{
		LevelDebug: color.New(color.FgCyan),
		LevelInfo:  color.New(color.FgBlue),
		LevelWarn:  color.New(color.FgYellow),
		LevelError: color.New(color.FgRed),
	}
	for _, c := range colors {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Logger{
		out:    out,
		level:  level,
		colors: colors,
	}
}

// WithLevel sets the log level and returns the logger
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
	return l
}

// SetLevel sets the log level from its name; unknown names mean INFO.
func (l *Logger) SetLevel(levelStr string) {
	level, _ := ParseLevel(levelStr)
	l.WithLevel(level)
}

// Level returns the current level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// ParseLevel converts a level name to a LogLevel. ok is false for unknown
// names, which map to LevelInfo.
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "none", "off":
		return LevelNone, true
	default:
		return LevelInfo, false
	}
}

// Debug logs a debug message if verbose mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message (standard level)
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	prefix := l.colors[level].Sprint(level.String())
	fmt.Fprintf(l.out, "[%s %s] %s\n", timeString(), prefix, fmt.Sprintf(format, args...))
}

// timeString returns a formatted time string for the log prefix
func timeString() string {
	return time.Now().Format("15:04:05.000")
}
