// Package logx emits one-line JSON log records to stdout, the same
// shape used across the daemon (ts, level, component, event, extras).
package logx

import (
	"encoding/json"
	"log"
	"time"
)

func init() {
	log.SetFlags(0)
}

// Info logs an informational event for a component with optional extra fields.
func Info(component, event string, fields map[string]any) {
	write("info", component, event, fields)
}

// Warn logs a recoverable anomaly.
func Warn(component, event string, fields map[string]any) {
	write("warn", component, event, fields)
}

// Error logs a failure with the error message attached.
func Error(component, event string, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	write("error", component, event, fields)
}

func write(level, component, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": component,
		"event":     event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.Println(string(b))
}
