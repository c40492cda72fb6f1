// Package provider defines the adapter boundary between kvcache and a
// key-value store.
//
// An Options value describes a store (address, credentials, local sizing) and
// opens a Dialer against it. The cache pool dials Conns from the Dialer and
// runs every command of one cache operation over a single Conn.
//
// Values are opaque bytes. Implementations MUST return exactly the bytes that
// were stored. Keys are passed through verbatim; namespacing is done by the cache.
package provider

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("provider: closed")

// Options opens a Dialer. maxConns is the upper bound of connections the
// cache pool will hold at once; adapters with their own transport pool size
// it accordingly.
type Options interface {
	Open(maxConns int) (Dialer, error)
}

type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
	// Close releases resources shared by all connections.
	Close() error
}

// Conn executes commands on one store connection. A Conn is used by one
// goroutine at a time.
type Conn interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl > 0 sets an expiry, ttl == 0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Keys lists keys matching a Redis-style glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// FaultClassifier is implemented by Dialers that can tell a command error
// (server replied, connection still usable) from a transport fault.
// Without it every error discards the connection.
type FaultClassifier interface {
	Broken(err error) bool
}

// PoolDefaulter is implemented by Options that suggest pool bounds when the
// caller gives none.
type PoolDefaulter interface {
	PoolDefaults() (minConns, maxConns int)
}
