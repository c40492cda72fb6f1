package kvcache

import "maps"

// Fields carries the structured context of one log line.
type Fields map[string]any

// Logger receives cache log events. Adapters for zap, logrus and slog live
// under log/. Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards every line. A nil Options.Logger means NopLogger.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// namedLogger stamps the cache name on each line under "cache".
type namedLogger struct {
	next Logger
	name string
}

func withName(l Logger, name string) Logger {
	if _, ok := l.(NopLogger); ok {
		return l
	}
	return namedLogger{next: l, name: name}
}

func (n namedLogger) with(f Fields) Fields {
	out := make(Fields, len(f)+1)
	maps.Copy(out, f)
	out["cache"] = n.name
	return out
}

func (n namedLogger) Debug(msg string, f Fields) { n.next.Debug(msg, n.with(f)) }
func (n namedLogger) Info(msg string, f Fields)  { n.next.Info(msg, n.with(f)) }
func (n namedLogger) Warn(msg string, f Fields)  { n.next.Warn(msg, n.with(f)) }
func (n namedLogger) Error(msg string, f Fields) { n.next.Error(msg, n.with(f)) }
