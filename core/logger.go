package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONLogger is the production Logger implementation. It writes one JSON
// object per line to stdout, matching the convention the rest of the
// corpus uses for container-friendly structured logs
// (`kubectl logs ... | jq 'select(.component == "...")'`).
type JSONLogger struct {
	component string
	minLevel  level
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

// NewJSONLogger creates a logger tagged with component, logging at info
// level and above. Use WithComponent to derive a scoped child logger.
func NewJSONLogger(component string) *JSONLogger {
	return &JSONLogger{component: component, minLevel: levelInfo}
}

// WithComponent returns a logger scoped to a sub-component, e.g.
// "orchestrator" -> "orchestrator/rag".
func (l *JSONLogger) WithComponent(component string) Logger {
	if l.component != "" {
		component = l.component + "/" + component
	}
	return &JSONLogger{component: component, minLevel: l.minLevel}
}

func (l *JSONLogger) write(lv level, msg string, fields map[string]interface{}) {
	if lv < l.minLevel {
		return
	}
	entry := map[string]interface{}{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     lv.String(),
		"component": l.component,
		"msg":       msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: marshal failed: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stdout, string(enc))
}

func (s level) String() string {
	switch s {
	case levelDebug:
		return "debug"
	case levelInfo:
		return "info"
	case levelWarn:
		return "warn"
	case levelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l *JSONLogger) Info(msg string, fields map[string]interface{})  { l.write(levelInfo, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields map[string]interface{})  { l.write(levelWarn, msg, fields) }
func (l *JSONLogger) Error(msg string, fields map[string]interface{}) { l.write(levelError, msg, fields) }
func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) { l.write(levelDebug, msg, fields) }

// contextFields extracts the session id carried on the context so every
// log line from a single orchestrator run can be joined.
func contextFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if sid, ok := ctx.Value(sessionLogKey{}).(string); ok && sid != "" {
		out["session_id"] = sid
	}
	return out
}

type sessionLogKey struct{}

// WithSessionID attaches a session id to ctx for correlated logging.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionLogKey{}, sessionID)
}

func (l *JSONLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(levelInfo, msg, contextFields(ctx, fields))
}
func (l *JSONLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(levelWarn, msg, contextFields(ctx, fields))
}
func (l *JSONLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(levelError, msg, contextFields(ctx, fields))
}
func (l *JSONLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(levelDebug, msg, contextFields(ctx, fields))
}
