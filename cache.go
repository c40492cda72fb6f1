package kvcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/unkn0wn-root/kvcache/codec"
	"github.com/unkn0wn-root/kvcache/internal/keyspace"
	"github.com/unkn0wn-root/kvcache/internal/pool"
	pr "github.com/unkn0wn-root/kvcache/provider"
)

// deleteBatch caps keys per DEL in DeleteAll.
const deleteBatch = 512

type cache[V any] struct {
	name       string
	space      keyspace.Space
	storeOpts  pr.Options
	poolOpts   *PoolOptions
	defaultTTL TTL
	codec      codec.Codec[V]
	log        Logger
	hooks      Hooks
	enabled    bool

	dialer pr.Dialer
	pool   *pool.Pool[pr.Conn]

	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	name := opts.Name
	if name == "" {
		gen := opts.NameGenerator
		if gen == nil {
			gen = defaultName
		}
		name = gen()
	}
	invalid := func(format string, args ...any) error {
		return &ConstructionError{Name: name, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidOptions}, args...)...)}
	}

	if name == "" {
		return nil, invalid("name generator returned an empty name")
	}
	if opts.StoreOptions == nil {
		return nil, invalid("store options are required")
	}
	if opts.Codec == nil {
		return nil, invalid("codec is required")
	}

	po := opts.PoolOptions
	if po == nil {
		d := defaultPool
		if pd, ok := opts.StoreOptions.(pr.PoolDefaulter); ok {
			d.Min, d.Max = pd.PoolDefaults()
		}
		po = &d
	}
	if po.Min < 0 || po.Max < 1 || po.Min > po.Max {
		return nil, invalid("pool bounds min=%d max=%d", po.Min, po.Max)
	}

	dialer, err := opts.StoreOptions.Open(po.Max)
	if err != nil {
		return nil, &ConstructionError{Name: name, Err: err}
	}

	cc := &cache[V]{
		name:       name,
		space:      keyspace.New(name),
		storeOpts:  opts.StoreOptions,
		poolOpts:   po,
		defaultTTL: opts.DefaultTTL,
		codec:      opts.Codec,
		log:        withName(coalesce[Logger](opts.Logger, NopLogger{}), name),
		hooks:      coalesce[Hooks](opts.Hooks, NopHooks{}),
		enabled:    !opts.Disabled,
		dialer:     dialer,
	}

	cfg := pool.Config[pr.Conn]{
		Min:       po.Min,
		Max:       po.Max,
		Dial:      dialer.Dial,
		Close:     func(cn pr.Conn) error { return cn.Close() },
		OnDiscard: cc.onDiscard,
	}
	if fc, ok := dialer.(pr.FaultClassifier); ok {
		cfg.Broken = fc.Broken
	}
	p, err := pool.New(cfg)
	if err != nil {
		_ = dialer.Close()
		return nil, &ConstructionError{Name: name, Err: errors.Join(ErrInvalidOptions, err)}
	}
	cc.pool = p
	return cc, nil
}

func (c *cache[V]) Name() string              { return c.name }
func (c *cache[V]) StoreOptions() pr.Options  { return c.storeOpts }
func (c *cache[V]) PoolOptions() *PoolOptions { return c.poolOpts }
func (c *cache[V]) DefaultTTL() TTL           { return c.defaultTTL }
func (c *cache[V]) Enabled() bool             { return c.enabled }

func (c *cache[V]) Status() Status {
	s := c.pool.Stats()
	return Status{Name: c.name, Size: s.Size, Available: s.Available, Pending: s.Pending}
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	sk := c.space.Key(key)

	var (
		v         V
		hit       bool
		decodeErr error
	)
	err := c.pool.With(ctx, func(cn pr.Conn) error {
		raw, ok, err := cn.Get(ctx, sk)
		if err != nil || !ok {
			return err
		}
		dv, err := c.codec.Decode(raw)
		if err != nil {
			// self-heal: drop what we cannot read
			decodeErr = err
			_, derr := cn.Del(ctx, sk)
			return derr
		}
		v, hit = dv, true
		return nil
	})
	if decodeErr != nil {
		c.hooks.DecodeFailed(key, decodeErr)
		c.log.Warn("dropped undecodable entry", Fields{"key": key, "err": decodeErr})
	}
	if err != nil {
		return zero, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	if !hit {
		c.hooks.Miss(key)
		return zero, false, nil
	}
	c.hooks.Hit(key)
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl TTL) (V, error) {
	if !c.enabled {
		return value, nil
	}
	if !ttl.Writable() {
		c.hooks.WriteSkipped(key, ttl)
		c.log.Debug("write skipped", Fields{"key": key, "ttl": ttl.String()})
		return value, nil
	}
	b, err := c.codec.Encode(value)
	if err != nil {
		return value, fmt.Errorf("kvcache: encode %q: %w", key, err)
	}
	sk := c.space.Key(key)
	err = c.pool.With(ctx, func(cn pr.Conn) error {
		return cn.Set(ctx, sk, b, ttl.Duration())
	})
	if err != nil {
		return value, &StoreError{Op: "set", Key: key, Err: err}
	}
	return value, nil
}

// Wrap is cache-aside without coordination: concurrent misses on one key
// each run fn and write. A stored zero value counts as a hit. On a failed
// write-back the computed value is returned along with the error.
func (c *cache[V]) Wrap(ctx context.Context, key string, fn ComputeFunc[V], opts ...WrapOption) (V, error) {
	var zero V
	if fn == nil {
		return zero, errNilCompute
	}
	cfg := wrapConfig{ttl: c.defaultTTL}
	for _, o := range opts {
		o(&cfg)
	}

	if v, ok, err := c.Get(ctx, key); err != nil {
		return zero, err
	} else if ok {
		return v, nil
	}

	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	if _, err := c.Set(ctx, key, v, cfg.ttl); err != nil {
		c.hooks.WriteBackFailed(key, err)
		c.log.Warn("write-back failed", Fields{"key": key, "err": err})
		return v, err
	}
	return v, nil
}

func (c *cache[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !c.enabled {
		return []string{}, nil
	}
	var raw []string
	err := c.pool.With(ctx, func(cn pr.Conn) (err error) {
		raw, err = cn.Keys(ctx, c.space.Pattern(pattern))
		return err
	})
	if err != nil {
		return nil, &StoreError{Op: "keys", Key: pattern, Err: err}
	}
	return c.userKeys(raw), nil
}

func (c *cache[V]) userKeys(storage []string) []string {
	out := make([]string, 0, len(storage))
	for _, sk := range storage {
		if k, ok := c.space.Strip(sk); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (c *cache[V]) Delete(ctx context.Context, keys ...string) (int64, error) {
	if !c.enabled || len(keys) == 0 {
		return 0, nil
	}
	var n int64
	err := c.pool.With(ctx, func(cn pr.Conn) (err error) {
		n, err = cn.Del(ctx, c.space.Keys(keys)...)
		return err
	})
	if err != nil {
		k := ""
		if len(keys) == 1 {
			k = keys[0]
		}
		return 0, &StoreError{Op: "del", Key: k, Err: err}
	}
	return n, nil
}

// DeleteAll lists the namespace and deletes it in batches on one connection.
func (c *cache[V]) DeleteAll(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	var removed int64
	err := c.pool.With(ctx, func(cn pr.Conn) error {
		keys, err := cn.Keys(ctx, c.space.All())
		if err != nil {
			return err
		}
		for start := 0; start < len(keys); start += deleteBatch {
			end := min(start+deleteBatch, len(keys))
			n, err := cn.Del(ctx, keys[start:end]...)
			removed += n
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StoreError{Op: "delete_all", Err: err}
	}
	c.log.Info("namespace flushed", Fields{"removed": removed})
	return nil
}

// Warm dials the reserved Min connections ahead of traffic.
func (c *cache[V]) Warm(ctx context.Context) error {
	if err := c.pool.Warm(ctx); err != nil {
		return &StoreError{Op: "warm", Err: err}
	}
	return nil
}

func (c *cache[V]) Ping(ctx context.Context) error {
	err := c.pool.With(ctx, func(cn pr.Conn) error { return cn.Ping(ctx) })
	if err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close shuts the pool and the store dialer down. Operations after Close
// fail with a StoreError wrapping pool.ErrClosed. Connections still in use
// are closed as they come back.
func (c *cache[V]) Close(_ context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = errors.Join(c.pool.Close(), c.dialer.Close())
		if c.closeErr != nil {
			c.log.Error("cache closed with errors", Fields{"err": c.closeErr})
			return
		}
		c.log.Info("cache closed", nil)
	})
	return c.closeErr
}

func (c *cache[V]) onDiscard(err error) {
	c.hooks.ConnDiscarded(err)
	c.log.Warn("connection discarded", Fields{"err": err})
}
