package kvcache

import (
	"context"

	c "github.com/unkn0wn-root/kvcache/codec"
	pr "github.com/unkn0wn-root/kvcache/provider"
)

// Cache is a namespaced view of a key-value store holding values of type V.
// All methods are safe for concurrent use. Keys are user keys; the
// "<name>:" namespace prefix never shows up in arguments or results.
type Cache[V any] interface {
	Name() string
	// StoreOptions and PoolOptions return the objects the cache was built
	// with, not copies.
	StoreOptions() pr.Options
	PoolOptions() *PoolOptions
	DefaultTTL() TTL
	Enabled() bool
	Status() Status

	// Get reports (value, true, nil) on hit and (zero, false, nil) on miss.
	Get(ctx context.Context, key string) (V, bool, error)
	// Set stores value and returns it unchanged. A non-writable ttl skips
	// the write and returns (value, nil).
	Set(ctx context.Context, key string, value V, ttl TTL) (V, error)
	// Wrap returns the cached value or computes, stores and returns it.
	// Presence follows Get's ok flag, so a stored zero value is a hit and
	// fn is not called.
	Wrap(ctx context.Context, key string, fn ComputeFunc[V], opts ...WrapOption) (V, error)

	// Keys lists user keys matching a Redis glob, sorted. "" matches all.
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	DeleteAll(ctx context.Context) error

	Warm(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ComputeFunc produces the value for a missing key.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// PoolOptions bounds the connection pool: Min <= size <= Max. Min slots are
// reserved at construction and dialed on first use.
type PoolOptions struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// Status is a pool snapshot.
type Status struct {
	Name      string
	Size      int
	Available int
	Pending   int
}

// Options configure a Cache. StoreOptions and Codec are required.
type Options[V any] struct {
	Name         string     // "" => NameGenerator()
	StoreOptions pr.Options // e.g. *redis.Options, *memory.Options
	PoolOptions  *PoolOptions
	DefaultTTL   TTL // used by Wrap; NoTTL => no expiry
	Codec        c.Codec[V]

	Logger        Logger        // nil => NopLogger
	Hooks         Hooks         // nil => NopHooks
	NameGenerator func() string // nil => "kvcache-<uuid>"
	Disabled      bool
}

type wrapConfig struct {
	ttl TTL
}

type WrapOption func(*wrapConfig)

// WithTTL overrides the cache's DefaultTTL for one Wrap call. WithTTL(NoTTL)
// stores without expiry even when DefaultTTL is set.
func WithTTL(ttl TTL) WrapOption {
	return func(w *wrapConfig) { w.ttl = ttl }
}

func New[V any](opts Options[V]) (Cache[V], error) {
	cc, err := newCache[V](opts)
	if err != nil {
		return nil, err
	}
	return cc, nil
}
