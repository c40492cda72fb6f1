// Package ristretto adapts dgraph-io/ristretto as a local, cost-bounded store.
//
// Ristretto hashes keys and cannot enumerate them, so the adapter keeps a key
// index next to the cache. Evictions and rejections prune the index; Keys
// still confirms every candidate against the cache.
package ristretto

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/kvcache/internal/glob"
	pr "github.com/unkn0wn-root/kvcache/provider"
)

var ErrInvalidOptions = errors.New("ristretto provider: invalid options")

type Options struct {
	NumCounters int64 `mapstructure:"num_counters"` // ~10x expected entries
	MaxCost     int64 `mapstructure:"max_cost"`     // bytes
	BufferItems int64 `mapstructure:"buffer_items"` // 0 => 64
}

var _ pr.Options = (*Options)(nil)

type item struct {
	key string
	val []byte
}

func (o *Options) Open(int) (pr.Dialer, error) {
	if o == nil || o.NumCounters <= 0 || o.MaxCost <= 0 || o.BufferItems < 0 {
		return nil, ErrInvalidOptions
	}
	buf := o.BufferItems
	if buf == 0 {
		buf = 64
	}
	d := &Dialer{index: make(map[string]struct{})}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: o.NumCounters,
		MaxCost:     o.MaxCost,
		BufferItems: buf,
		OnEvict:     d.forget,
		OnReject:    d.forget,
	})
	if err != nil {
		return nil, err
	}
	d.c = c
	return d, nil
}

type Dialer struct {
	c      *rc.Cache
	closed atomic.Bool

	mu    sync.Mutex
	index map[string]struct{}
}

func (d *Dialer) forget(it *rc.Item) {
	e, ok := it.Value.(*item)
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.index, e.key)
	d.mu.Unlock()
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
	d.c.Wait()
	d.c.Close()
	return nil
}

func (d *Dialer) lookup(key string) ([]byte, bool) {
	v, ok := d.c.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(*item)
	if !ok || e.key != key {
		// hash collision or unexpected shape
		return nil, false
	}
	return e.val, true
}

type conn struct{ d *Dialer }

func (c conn) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.d.closed.Load() {
		return nil, false, pr.ErrClosed
	}
	v, ok := c.d.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set may be dropped by ristretto under contention or by its admission
// policy. A dropped write reads back as a miss, which is valid cache behavior.
func (c conn) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.d.closed.Load() {
		return pr.ErrClosed
	}
	if ttl < 0 {
		ttl = 0
	}
	e := &item{key: key, val: append([]byte(nil), value...)}
	c.d.mu.Lock()
	c.d.index[key] = struct{}{}
	c.d.mu.Unlock()
	if !c.d.c.SetWithTTL(key, e, int64(len(value))+int64(len(key)), ttl) {
		return nil
	}
	c.d.c.Wait() // make the write visible to the next Get
	return nil
}

func (c conn) Keys(_ context.Context, pattern string) ([]string, error) {
	if c.d.closed.Load() {
		return nil, pr.ErrClosed
	}
	c.d.mu.Lock()
	cand := make([]string, 0, len(c.d.index))
	for k := range c.d.index {
		if glob.Match(pattern, k) {
			cand = append(cand, k)
		}
	}
	c.d.mu.Unlock()

	out := cand[:0]
	for _, k := range cand {
		if _, ok := c.d.lookup(k); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (c conn) Del(_ context.Context, keys ...string) (int64, error) {
	if c.d.closed.Load() {
		return 0, pr.ErrClosed
	}
	var n int64
	for _, k := range keys {
		if _, ok := c.d.lookup(k); ok {
			n++
		}
		c.d.c.Del(k)
		c.d.mu.Lock()
		delete(c.d.index, k)
		c.d.mu.Unlock()
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
