// Package bigcache adapts allegro/bigcache as a local store.
//
// BigCache evicts by a global LifeWindow only, so values are framed with their
// own deadline and checked on every read. LifeWindow still bounds how long any
// entry can live.
package bigcache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/kvcache/internal/glob"
	"github.com/unkn0wn-root/kvcache/internal/wire"
	pr "github.com/unkn0wn-root/kvcache/provider"
)

const defaultLifeWindow = 24 * time.Hour

type Options struct {
	LifeWindow         time.Duration `mapstructure:"life_window"` // 0 => 24h
	CleanWindow        time.Duration `mapstructure:"clean_window"`
	Shards             int           `mapstructure:"shards"` // power of two
	MaxEntriesInWindow int           `mapstructure:"max_entries_in_window"`
	MaxEntrySize       int           `mapstructure:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"` // ~ memory limit; 0 = unlimited

	Clock func() time.Time `mapstructure:"-"`
}

var _ pr.Options = (*Options)(nil)

func (o *Options) Open(int) (pr.Dialer, error) {
	var cfg Options
	if o != nil {
		cfg = *o
	}
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = defaultLifeWindow
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Dialer{c: c, now: now}, nil
}

type Dialer struct {
	c      *bc.BigCache
	now    func() time.Time
	closed atomic.Bool
}

func (d *Dialer) Dial(context.Context) (pr.Conn, error) {
	if d.closed.Load() {
		return nil, pr.ErrClosed
	}
	return conn{d}, nil
}

func (d *Dialer) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.c.Close()
}

// Len reports entries held by BigCache, expired ones included.
func (d *Dialer) Len() int { return d.c.Len() }

type conn struct{ d *Dialer }

func (c conn) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.d.closed.Load() {
		return nil, false, pr.ErrClosed
	}
	b, err := c.d.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, err := wire.Decode(b)
	if err != nil || e.Expired(c.d.now()) {
		// foreign or dead entry
		_ = c.d.c.Delete(key)
		return nil, false, nil
	}
	return e.Payload, true, nil
}

func (c conn) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.d.closed.Load() {
		return pr.ErrClosed
	}
	return c.d.c.Set(key, wire.NewEntry(value, ttl, c.d.now()).Encode())
}

func (c conn) Keys(_ context.Context, pattern string) ([]string, error) {
	if c.d.closed.Load() {
		return nil, pr.ErrClosed
	}
	now := c.d.now()
	var out []string
	it := c.d.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue // entry overwritten or evicted mid-iteration
		}
		k := e.Key()
		if !glob.Match(pattern, k) {
			continue
		}
		if fe, err := wire.Decode(e.Value()); err != nil || fe.Expired(now) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (c conn) Del(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		_, ok, err := c.Get(ctx, k)
		if err != nil {
			return n, err
		}
		if err := c.d.c.Delete(k); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (c conn) Ping(context.Context) error {
	if c.d.closed.Load() {
		return pr.ErrClosed
	}
	return nil
}

func (c conn) Close() error { return nil }
