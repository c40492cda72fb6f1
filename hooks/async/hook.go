// Package asynchook moves kvcache hook calls off the request path.
//
// Events are queued to a fixed set of workers. A full queue drops events
// instead of blocking the cache; Dropped counts them.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker, queue of 1000
//	defer hooks.Close()
//
//	users, _ := kvcache.New[User](kvcache.Options[User]{
//	    Name:         "users",
//	    StoreOptions: &redis.Options{Addr: "localhost:6379"},
//	    Codec:        codec.JSON[User]{},
//	    Hooks:        hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/kvcache"
)

type Hooks struct {
	inner kvcache.Hooks
	q     chan func()
	wg    sync.WaitGroup

	mu      sync.RWMutex // guards closed against concurrent enqueue
	closed  bool
	dropped atomic.Uint64
}

var _ kvcache.Hooks = (*Hooks)(nil)

func New(inner kvcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for range workers {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are
// dropped.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)  { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string) { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) WriteSkipped(k string, ttl kvcache.TTL) {
	h.try(func() { h.inner.WriteSkipped(k, ttl) })
}
func (h *Hooks) WriteBackFailed(k string, err error) {
	h.try(func() { h.inner.WriteBackFailed(k, err) })
}
func (h *Hooks) DecodeFailed(k string, err error) { h.try(func() { h.inner.DecodeFailed(k, err) }) }
func (h *Hooks) ConnDiscarded(err error)          { h.try(func() { h.inner.ConnDiscarded(err) }) }
