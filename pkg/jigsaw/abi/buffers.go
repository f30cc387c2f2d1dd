package abi

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrConsumed is returned by every use of a Buffers handle after the
	// first.
	ErrConsumed = errors.New("abi: output buffers already consumed or released")

	// ErrNoOutput is returned when Consume is called on a nil handle.
	ErrNoOutput = errors.New("abi: no output buffers")
)

const (
	buffersLive uint32 = iota
	buffersDone
)

// Buffers is an owned handle over one invocation's output regions. It can
// be consumed once or released once; whichever happens first frees the
// regions and every later call is a no-op reporting ErrConsumed. Regions
// are never reachable through the handle after it is freed.
type Buffers struct {
	view    func() (*Region, error)
	release func()
	state   atomic.Uint32

	mu    sync.Mutex
	freed bool
	hooks []func()
}

// NewBuffers wraps engine output. view produces the Region and is called at
// most once, inside Consume; release frees the underlying memory and is
// called exactly once, whether or not view ran.
func NewBuffers(view func() (*Region, error), release func()) *Buffers {
	return &Buffers{view: view, release: release}
}

// WrapRegion wraps an already materialised region.
func WrapRegion(r *Region, release func()) *Buffers {
	return NewBuffers(func() (*Region, error) { return r, nil }, release)
}

// AfterRelease registers fn to run once the regions have been freed. Hooks
// registered after release run immediately.
func (b *Buffers) AfterRelease(fn func()) {
	if b == nil || fn == nil {
		return
	}
	b.mu.Lock()
	if b.freed {
		b.mu.Unlock()
		fn()
		return
	}
	b.hooks = append(b.hooks, fn)
	b.mu.Unlock()
}

// Consume hands the regions to fn and frees them when fn returns. fn must
// copy anything it keeps; the Region and its slices are invalid afterwards.
func (b *Buffers) Consume(fn func(*Region) error) error {
	if b == nil {
		return ErrNoOutput
	}
	if !b.state.CompareAndSwap(buffersLive, buffersDone) {
		return ErrConsumed
	}
	defer b.free()

	var r *Region
	if b.view != nil {
		var err error
		if r, err = b.view(); err != nil {
			return err
		}
	}
	if r == nil {
		return ErrNoOutput
	}
	return fn(r)
}

// Release frees the regions without reading them. It reports whether this
// call did the freeing.
func (b *Buffers) Release() bool {
	if b == nil {
		return false
	}
	if !b.state.CompareAndSwap(buffersLive, buffersDone) {
		return false
	}
	b.free()
	return true
}

// Released reports whether the handle has been consumed or released.
func (b *Buffers) Released() bool {
	return b == nil || b.state.Load() == buffersDone
}

func (b *Buffers) free() {
	b.view = nil
	if b.release != nil {
		b.release()
		b.release = nil
	}

	b.mu.Lock()
	b.freed = true
	hooks := b.hooks
	b.hooks = nil
	b.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
