// Package sloghooks reports kvcache hook events through log/slog.
//
// Hits and misses are sampled and off by default. Failures are always
// logged. Keys are hashed unless Options.Redact says otherwise.
package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/kvcache"
)

const (
	evHit           = "kvcache.hit"
	evMiss          = "kvcache.miss"
	evWriteSkipped  = "kvcache.write_skipped"
	evWriteBackFail = "kvcache.write_back_failed"
	evDecodeFail    = "kvcache.decode_failed"
	evConnDiscarded = "kvcache.conn_discarded"
)

type Options struct {
	// HitEvery and MissEvery log every Nth hit or miss. 0 disables them.
	HitEvery  uint64
	MissEvery uint64
	// SkipEvery logs every Nth skipped write. 0 and 1 log all of them.
	SkipEvery uint64
	// Redact maps a key to what gets logged. Defaults to a SHA-256 prefix.
	Redact func(string) string
	// Cache, when set, is added to every event as a "cache" attribute.
	Cache string
}

// sampler passes one event in every n. n <= 1 passes everything.
type sampler struct {
	n   uint64
	ctr atomic.Uint64
}

func (s *sampler) take() bool {
	return s.n <= 1 || s.ctr.Add(1)%s.n == 0
}

type Hooks struct {
	l      *slog.Logger
	redact func(string) string

	hits, misses *sampler
	skips        sampler
}

var _ kvcache.Hooks = (*Hooks)(nil)

// New returns hooks logging to l. A nil l yields hooks that do nothing.
func New(l *slog.Logger, opts Options) *Hooks {
	h := &Hooks{redact: opts.Redact, skips: sampler{n: opts.SkipEvery}}
	if l != nil && opts.Cache != "" {
		l = l.With("cache", opts.Cache)
	}
	h.l = l
	if h.redact == nil {
		h.redact = hashKey
	}
	if opts.HitEvery > 0 {
		h.hits = &sampler{n: opts.HitEvery}
	}
	if opts.MissEvery > 0 {
		h.misses = &sampler{n: opts.MissEvery}
	}
	return h
}

func hashKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func (h *Hooks) emit(level slog.Level, event string, attrs ...slog.Attr) {
	h.l.LogAttrs(context.Background(), level, event, attrs...)
}

func (h *Hooks) Hit(key string) {
	if h.l != nil && h.hits != nil && h.hits.take() {
		h.emit(slog.LevelDebug, evHit, slog.String("key", h.redact(key)))
	}
}

func (h *Hooks) Miss(key string) {
	if h.l != nil && h.misses != nil && h.misses.take() {
		h.emit(slog.LevelDebug, evMiss, slog.String("key", h.redact(key)))
	}
}

func (h *Hooks) WriteSkipped(key string, ttl kvcache.TTL) {
	if h.l != nil && h.skips.take() {
		h.emit(slog.LevelInfo, evWriteSkipped,
			slog.String("key", h.redact(key)),
			slog.String("ttl", ttl.String()))
	}
}

func (h *Hooks) WriteBackFailed(key string, err error) {
	if h.l != nil {
		h.emit(slog.LevelWarn, evWriteBackFail, slog.String("key", h.redact(key)), slog.Any("err", err))
	}
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l != nil {
		h.emit(slog.LevelWarn, evDecodeFail, slog.String("key", h.redact(key)), slog.Any("err", err))
	}
}

func (h *Hooks) ConnDiscarded(err error) {
	if h.l != nil {
		h.emit(slog.LevelWarn, evConnDiscarded, slog.Any("err", err))
	}
}
