// Package zap adapts go.uber.org/zap to kvcache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvcache"
)

var _ kvcache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New tags every line with component=kvcache.
func New(l *zap.Logger) Logger { return Logger{L: l.With(zap.String("component", "kvcache"))} }

func (z Logger) Debug(msg string, f kvcache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f kvcache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f kvcache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f kvcache.Fields) { z.L.Error(msg, fields(f)...) }

// fields emits keys in sorted order; errors go through zap.NamedError.
func fields(f kvcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
