// Package logger writes leveled JSON log lines.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities
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
	default:
		return "ERROR"
	}
}

// ParseLevel maps a config value such as "debug" to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	service string
	level   Level
	mu      *sync.Mutex
	out     io.Writer
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput sets the destination, os.Stdout by default
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithLevel drops entries below the level
func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

func New(service string, opts ...Option) *Logger {
	l := &Logger{service: service, level: LevelInfo, out: os.Stdout, mu: &sync.Mutex{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return New("", WithOutput(io.Discard), WithLevel(LevelError+1))
}

// Named returns a logger for another service writing to the same output
func (l *Logger) Named(service string) *Logger {
	return &Logger{service: service, level: l.level, out: l.out, mu: l.mu}
}

func (l *Logger) log(level Level, action, msg string, fields map[string]any, err error) {
	if l == nil || level < l.level {
		return
	}
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level.String(),
		"service":   l.service,
		"action":    action,
		"message":   msg,
		"hostname":  hostname(),
	}
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = map[string]any{"msg": err.Error(), "type": fmt.Sprintf("%T", err)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = json.NewEncoder(l.out).Encode(entry)
}

func (l *Logger) Debug(action string, fields map[string]any) { l.log(LevelDebug, action, action, fields, nil) }
func (l *Logger) Info(action string, fields map[string]any) { l.log(LevelInfo, action, action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any) { l.log(LevelWarn, action, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(LevelError, action, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
