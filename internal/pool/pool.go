// Package pool implements the bounded connection pool behind every cache.
//
// A pool starts with Min reserved slots. They count towards Size but are only
// dialed on first acquisition, so a fresh pool reports Size == Min and
// Available == 0. Size never leaves [Min, Max] until Close.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrClosed        = errors.New("pool: closed")
	ErrInvalidBounds = errors.New("pool: invalid bounds")
	errPanicked      = errors.New("pool: operation panicked")
)

type Config[C any] struct {
	Min int
	Max int

	// Dial opens one connection. Required.
	Dial func(ctx context.Context) (C, error)
	// Close releases a connection dropped from the pool. Optional.
	Close func(C) error
	// Broken reports whether an operation error left the connection unusable.
	// nil treats every error as fatal.
	Broken func(error) bool
	// OnDiscard observes connections dropped after a fatal error. Optional.
	OnDiscard func(err error)
}

// Stats is a point-in-time snapshot.
type Stats struct {
	Size      int // reserved + dialed connections
	Available int // idle connections ready for acquisition
	Pending   int // acquirers waiting for a free slot
}

type Pool[C any] struct {
	cfg Config[C]
	sem *semaphore.Weighted // one unit per connection handed out

	mu       sync.Mutex
	idle     []C
	live     int // dialed or dialing
	reserved int // counted in Size, not dialed yet
	closed   bool

	pending atomic.Int64
}

func New[C any](cfg Config[C]) (*Pool[C], error) {
	if cfg.Dial == nil {
		return nil, errors.New("pool: dial func is required")
	}
	if cfg.Min < 0 || cfg.Max < 1 || cfg.Min > cfg.Max {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidBounds, cfg.Min, cfg.Max)
	}
	return &Pool[C]{
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.Max)),
		reserved: cfg.Min,
	}, nil
}

// Acquire hands out an idle connection, dialing one when none is idle.
// It blocks while Max connections are in use, until ctx is done.
func (p *Pool[C]) Acquire(ctx context.Context) (C, error) {
	var zero C
	if !p.sem.TryAcquire(1) {
		p.pending.Add(1)
		err := p.sem.Acquire(ctx, 1)
		p.pending.Add(-1)
		if err != nil {
			return zero, err
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return zero, ErrClosed
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	if p.reserved > 0 {
		p.reserved--
	}
	p.live++
	p.mu.Unlock()

	c, err := p.cfg.Dial(ctx)
	if err != nil {
		p.mu.Lock()
		p.dropLocked()
		p.mu.Unlock()
		p.sem.Release(1)
		return zero, err
	}
	return c, nil
}

// Release returns a healthy connection to the idle set.
func (p *Pool[C]) Release(c C) {
	p.mu.Lock()
	if p.closed {
		p.live--
		p.mu.Unlock()
		_ = p.closeConn(c)
		p.sem.Release(1)
		return
	}
	p.idle = append(p.idle, c)
	p.mu.Unlock()
	p.sem.Release(1)
}

// Discard drops a broken connection. Its slot goes back to reserved when the
// pool would otherwise shrink below Min.
func (p *Pool[C]) Discard(c C, cause error) {
	p.mu.Lock()
	p.dropLocked()
	p.mu.Unlock()
	_ = p.closeConn(c)
	if p.cfg.OnDiscard != nil {
		p.cfg.OnDiscard(cause)
	}
	p.sem.Release(1)
}

// With runs fn on a pooled connection and gives it back on every exit path,
// discarding it when fn's error marks it broken or fn panics.
func (p *Pool[C]) With(ctx context.Context, fn func(C) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	done := false
	defer func() {
		if !done {
			p.Discard(c, errPanicked)
		}
	}()

	err = fn(c)
	done = true
	if err != nil && p.broken(err) {
		p.Discard(c, err)
		return err
	}
	p.Release(c)
	return err
}

// Warm dials every reserved slot concurrently and parks the connections
// idle. Idle connections already in the pool are left alone.
func (p *Pool[C]) Warm(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	n := p.reserved
	p.reserved = 0
	p.live += n
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			c, err := p.cfg.Dial(gctx)
			p.mu.Lock()
			if err != nil {
				p.dropLocked()
				p.mu.Unlock()
				return err
			}
			if p.closed {
				p.live--
				p.mu.Unlock()
				_ = p.closeConn(c)
				return ErrClosed
			}
			p.idle = append(p.idle, c)
			p.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Size:      p.live + p.reserved,
		Available: len(p.idle),
		Pending:   int(p.pending.Load()),
	}
}

// Close drops idle connections and fails later acquisitions with ErrClosed.
// Connections in use are closed when released. Safe to call multiple times.
func (p *Pool[C]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.reserved = 0
	p.mu.Unlock()

	var errs []error
	for _, c := range idle {
		if err := p.closeConn(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool[C]) dropLocked() {
	p.live--
	if !p.closed && p.live+p.reserved < p.cfg.Min {
		p.reserved++
	}
}

func (p *Pool[C]) broken(err error) bool {
	if p.cfg.Broken == nil {
		return true
	}
	return p.cfg.Broken(err)
}

func (p *Pool[C]) closeConn(c C) error {
	if p.cfg.Close == nil {
		return nil
	}
	return p.cfg.Close(c)
}
