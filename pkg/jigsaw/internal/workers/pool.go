// Package workers runs native calls on a fixed set of goroutines and meters
// the memory and admission rate of the requests queued for them.
package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned by submissions after Close.
	ErrClosed = errors.New("workers: pool closed")

	// ErrSaturated is returned by TrySubmit when every worker is busy and
	// the queue is full.
	ErrSaturated = errors.New("workers: queue full")
)

// Config sizes a Pool.
type Config struct {
	// Workers is the number of goroutines. 0 means GOMAXPROCS.
	Workers int

	// QueueDepth is the number of tasks that may wait for a worker. 0 means
	// twice the worker count; negative means no waiting at all, so TrySubmit
	// only succeeds while a worker is idle.
	QueueDepth int

	// LockOSThread pins each worker goroutine to its OS thread for its
	// whole life, for engines with thread-affine state.
	LockOSThread bool
}

// Pool manages a fixed pool of goroutines. Tasks never outlive Close: it
// stops admission, then waits for queued and running tasks to finish.
type Pool struct {
	numWorkers int
	lockThread bool
	workCh     chan func()
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex

	busy atomic.Int32
}

// New starts a pool.
func New(cfg Config) *Pool {
	n := cfg.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	depth := cfg.QueueDepth
	switch {
	case depth == 0:
		depth = 2 * n
	case depth < 0:
		depth = 0
	}

	p := &Pool{
		numWorkers: n,
		lockThread: cfg.LockOSThread,
		workCh:     make(chan func(), depth),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	if p.lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	for task := range p.workCh {
		p.busy.Add(1)
		task()
		p.busy.Add(-1)
	}
}

// Submit enqueues task, waiting for queue space until ctx is done.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.workCh <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues task without waiting.
func (p *Pool) TrySubmit(task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.workCh <- task:
		return nil
	default:
		return ErrSaturated
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.numWorkers }

// Busy returns the number of tasks currently running.
func (p *Pool) Busy() int { return int(p.busy.Load()) }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return len(p.workCh) }

// Close stops admission and waits for every accepted task to finish. It is
// idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.submitMu.Lock()
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}
