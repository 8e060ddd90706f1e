// internal/utils/logger.go

package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the upper-case level name.
func (l LogLevel) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel converts a config string into a LogLevel. Unknown values map to InfoLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// sink is shared by every logger derived from the same root so that a level
// change made after component loggers were created still applies to them.
type sink struct {
	mu    sync.Mutex
	out   io.Writer
	level LogLevel
}

var defaultSink = &sink{out: os.Stdout, level: InfoLevel}

// SetDefaultLevel changes the minimum level of all loggers created by
// NewLogger and NewComponentLogger.
func SetDefaultLevel(level LogLevel) {
	defaultSink.mu.Lock()
	defaultSink.level = level
	defaultSink.mu.Unlock()
}

// SetDefaultOutput redirects all default loggers to w.
func SetDefaultOutput(w io.Writer) {
	defaultSink.mu.Lock()
	defaultSink.out = w
	defaultSink.mu.Unlock()
}

// SimpleLogger provides a line-oriented logger implementation.
type SimpleLogger struct {
	sink   *sink
	fields map[string]interface{}
}

// NewLogger creates a logger writing to the process-wide default sink.
func NewLogger() Logger {
	return &SimpleLogger{sink: defaultSink, fields: map[string]interface{}{}}
}

// NewComponentLogger creates a default logger tagged with component=name.
func NewComponentLogger(name string) Logger {
	return NewLogger().WithField("component", name)
}

// NewWriterLogger creates a logger with its own sink, used by tests to capture output.
func NewWriterLogger(w io.Writer, level LogLevel) Logger {
	return &SimpleLogger{sink: &sink{out: w, level: level}, fields: map[string]interface{}{}}
}

func (l *SimpleLogger) Debug(msg string) {
	l.log(DebugLevel, msg)
}

func (l *SimpleLogger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Info(msg string) {
	l.log(InfoLevel, msg)
}

func (l *SimpleLogger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Warn(msg string) {
	l.log(WarnLevel, msg)
}

func (l *SimpleLogger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Error(msg string) {
	l.log(ErrorLevel, msg)
}

func (l *SimpleLogger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *SimpleLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &SimpleLogger{sink: l.sink, fields: newFields}
}

// log formats and outputs a log message if it meets the minimum level.
// Format: [TIME] [LEVEL] message fields={...}
func (l *SimpleLogger) log(level LogLevel, msg string) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg)
	if len(l.fields) > 0 {
		line += " fields=" + formatFields(l.fields)
	}
	fmt.Fprintln(l.sink.out, line)
}

// formatFields renders fields sorted by key so lines are stable.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
