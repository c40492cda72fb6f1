// Package logrus adapts sirupsen/logrus to kvcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/kvcache"
)

var _ kvcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "kvcache")}
}

func (l Logger) Debug(msg string, f kvcache.Fields) { l.entry(f).Debug(msg) }
func (l Logger) Info(msg string, f kvcache.Fields)  { l.entry(f).Info(msg) }
func (l Logger) Warn(msg string, f kvcache.Fields)  { l.entry(f).Warn(msg) }
func (l Logger) Error(msg string, f kvcache.Fields) { l.entry(f).Error(msg) }

// entry maps an "err" field to logrus' error key.
func (l Logger) entry(f kvcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	lf := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			lf[logrus.ErrorKey] = err
			continue
		}
		lf[k] = v
	}
	return l.E.WithFields(lf)
}
