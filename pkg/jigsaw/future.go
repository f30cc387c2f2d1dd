package jigsaw

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// Future is the pending outcome of a submitted request.
type Future struct {
	id    uint64
	state atomic.Uint32
	done  chan struct{}

	mu        sync.Mutex
	result    *Result
	err       error
	abandoned error
}

func newFuture(id uint64) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID identifies the request within its session, for correlating logs.
func (f *Future) ID() uint64 { return f.id }

// State returns the current lifecycle state. A terminal state is only
// observable once the request's output buffers have been released.
func (f *Future) State() State { return State(f.state.Load()) }

// Done is closed when the request reaches a terminal state.
func (f *Future) Done() <-chan struct{} { return f.done }

// advance moves f from one state to another and reports whether it did.
// It panics if the lifecycle forbids the transition.
func (f *Future) advance(from, to State) bool {
	mustTransition(from, to)
	return f.state.CompareAndSwap(uint32(from), uint32(to))
}

// complete publishes the outcome. to must be terminal and reachable from
// the current state.
func (f *Future) complete(from, to State, res *Result, err error) bool {
	mustTransition(from, to)
	// The state and the outcome change together under mu, so abandon never
	// sees a terminal state without its outcome.
	f.mu.Lock()
	if !f.state.CompareAndSwap(uint32(from), uint32(to)) {
		f.mu.Unlock()
		return false
	}
	f.result, f.err = res, err
	f.mu.Unlock()
	close(f.done)
	return true
}

// Cancel stops the request if the engine has not been called yet and
// reports whether it did. Once invocation has started the native call runs
// to completion; Cancel then only abandons the result, and Wait returns a
// Canceled error.
func (f *Future) Cancel() bool {
	if f.complete(StateValidated, StateCanceled, nil,
		mesherr.Canceled(mesherr.StageQueue, context.Canceled, "canceled before invocation")) {
		return true
	}
	f.abandon(context.Canceled)
	return false
}

// abandon marks a running request's result as unwanted. It reports false
// if the request has already completed.
func (f *Future) abandon(cause error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.State().Terminal() {
		return false
	}
	if f.abandoned == nil {
		f.abandoned = cause
	}
	return true
}

func (f *Future) isAbandoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abandoned != nil
}

// Wait blocks until the request completes or ctx is done. When ctx ends
// first, a request still waiting for a worker is cancelled; one already
// inside the engine is abandoned. A Result and an error are never both
// non-nil.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		if f.complete(StateValidated, StateCanceled, nil,
			mesherr.Canceled(mesherr.StageQueue, ctx.Err(), "canceled before invocation")) {
			return nil, f.outcomeErr()
		}
		if f.abandon(ctx.Err()) {
			return nil, mesherr.Canceled(mesherr.StageInvoke, ctx.Err(), "result abandoned while the engine runs")
		}
		// Completed concurrently; prefer the real outcome unless it was
		// already abandoned.
		<-f.done
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned != nil {
		return nil, mesherr.Canceled(mesherr.StageInvoke, f.abandoned, "result abandoned while the engine ran")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *Future) outcomeErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
