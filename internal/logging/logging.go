// Package logging emits one JSON object per line to stdout. It replaces the
// per-package logJSON helpers that tend to accumulate in services like this
// one with a single shared writer.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Fields carries the contextual key/value pairs attached to a log line.
type Fields map[string]any

// Logger writes structured JSON log lines. It is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	enc       *json.Encoder
	component string
}

// New returns a Logger writing to stdout tagged with the given component.
func New(component string) *Logger {
	return NewWithWriter(os.Stdout, component)
}

// NewWithWriter is used by tests to capture output.
func NewWithWriter(w io.Writer, component string) *Logger {
	return &Logger{enc: json.NewEncoder(w), component: component}
}

func (l *Logger) Info(event string, fields Fields) {
	l.log("info", event, fields)
}

func (l *Logger) Warn(event string, fields Fields) {
	l.log("warn", event, fields)
}

func (l *Logger) Error(event string, fields Fields) {
	l.log("error", event, fields)
}

func (l *Logger) log(level, event string, fields Fields) {
	entry := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["component"] = l.component
	entry["event"] = event

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}
