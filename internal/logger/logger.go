// Package logger writes structured JSON log lines to stdout.
package logger

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// suppressWindow is how long a repeated error action stays muted after
// it has been logged once. Keeps a flapping database from flooding logs.
const suppressWindow = time.Minute

type Logger struct {
	service string
	out     io.Writer

	mu    sync.Mutex
	muted map[string]time.Time
}

func New(service string) *Logger {
	return &Logger{service: service, out: os.Stdout, muted: map[string]time.Time{}}
}

// NewWithWriter is used by tests to capture output.
func NewWithWriter(service string, w io.Writer) *Logger {
	return &Logger{service: service, out: w, muted: map[string]time.Time{}}
}

func (l *Logger) log(level, action string, fields map[string]any, err error) {
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"service":   l.service,
		"action":    action,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	l.mu.Lock()
	_ = json.NewEncoder(l.out).Encode(entry)
	l.mu.Unlock()
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log("INFO", action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log("DEBUG", action, fields, nil) }

func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log("ERROR", action, fields, err)
}

// ErrorSuppressed logs like Error but mutes repeats of the same action
// for suppressWindow. Used for transient store errors on hot paths.
func (l *Logger) ErrorSuppressed(action string, err error, fields map[string]any) {
	l.mu.Lock()
	until, ok := l.muted[action]
	now := time.Now()
	if ok && now.Before(until) {
		l.mu.Unlock()
		return
	}
	l.muted[action] = now.Add(suppressWindow)
	l.mu.Unlock()
	l.log("ERROR", action, fields, err)
}
