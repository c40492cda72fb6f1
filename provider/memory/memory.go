// Package memory is an in-process store for tests, local development and
// single-node deployments. It speaks the same key and glob semantics as the
// Redis adapter.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/unkn0wn-root/kvcache/internal/glob"
	pr "github.com/unkn0wn-root/kvcache/provider"
)

type Options struct {
	// CleanupInterval sweeps expired entries in the background. Zero disables
	// the sweeper; expired entries are still never returned.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	Clock func() time.Time `mapstructure:"-"` // default time.Now
}

var _ pr.Options = (*Options)(nil)

// Open creates a private Store that is closed together with the dialer.
func (o *Options) Open(int) (pr.Dialer, error) {
	var opts Options
	if o != nil {
		opts = *o
	}
	return &dialer{s: New(opts), owned: true}, nil
}

type entry struct {
	val       []byte
	expiresAt time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store is a TTL-aware byte map guarded by one RWMutex.
type Store struct {
	mu     sync.RWMutex
	items  map[string]entry
	closed bool
	now    func() time.Time

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(o Options) *Store {
	s := &Store{items: make(map[string]entry), now: o.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	if o.CleanupInterval > 0 {
		s.ticker = time.NewTicker(o.CleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Sweep()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

// Open lets several caches share one Store. The Store outlives their
// dialers and must be closed by its creator.
func (s *Store) Open(int) (pr.Dialer, error) { return &dialer{s: s}, nil }

// Sweep drops expired entries.
func (s *Store) Sweep() {
	now := s.now()
	s.mu.Lock()
	for k, e := range s.items {
		if e.expired(now) {
			delete(s.items, k)
		}
	}
	s.mu.Unlock()
}

// Len counts stored entries, including expired ones not swept yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.items = nil
	s.mu.Unlock()

	if s.stopCh != nil {
		close(s.stopCh)
		s.ticker.Stop()
		s.wg.Wait()
	}
	return nil
}

func (s *Store) get(key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, false, pr.ErrClosed
	}
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(now) {
		s.mu.Lock()
		if cur, ok := s.items[key]; ok && cur.expired(now) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.val...), true, nil
}

func (s *Store) set(key string, value []byte, ttl time.Duration) error {
	e := entry{val: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pr.ErrClosed
	}
	s.items[key] = e
	return nil
}

func (s *Store) keys(pattern string) ([]string, error) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, pr.ErrClosed
	}
	var out []string
	for k, e := range s.items {
		if !e.expired(now) && glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) del(keys []string) (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, pr.ErrClosed
	}
	var n int64
	for _, k := range keys {
		if e, ok := s.items[k]; ok {
			delete(s.items, k)
			if !e.expired(now) {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return pr.ErrClosed
	}
	return nil
}

type dialer struct {
	s     *Store
	owned bool
}

func (d *dialer) Dial(context.Context) (pr.Conn, error) {
	if err := d.s.ping(); err != nil {
		return nil, err
	}
	return conn{d.s}, nil
}

func (d *dialer) Close() error {
	if d.owned {
		return d.s.Close()
	}
	return nil
}

// conn is a stateless handle; all handles of a dialer see the same Store.
type conn struct{ s *Store }

func (c conn) Get(_ context.Context, key string) ([]byte, bool, error) { return c.s.get(key) }

func (c conn) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return c.s.set(key, value, ttl)
}

func (c conn) Keys(_ context.Context, pattern string) ([]string, error) { return c.s.keys(pattern) }

func (c conn) Del(_ context.Context, keys ...string) (int64, error) { return c.s.del(keys) }

func (c conn) Ping(context.Context) error { return c.s.ping() }

func (c conn) Close() error { return nil }
