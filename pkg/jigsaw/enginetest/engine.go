package enginetest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
)

// Status codes of the mock engine.
const (
	StatusInvalidArgument  abi.Status = 5
	StatusDegenerate       abi.Status = 6
	StatusOutOfMemory      abi.Status = 7
	StatusCapacityExceeded abi.Status = 8
	StatusUnsupported      abi.Status = 9
)

// Statuses is the mock engine's status table.
var Statuses = abi.StatusTable{
	StatusInvalidArgument:  {Name: "invalid argument"},
	StatusDegenerate:       {Name: "degenerate input"},
	StatusOutOfMemory:      {Name: "out of memory", Exhausted: true},
	StatusCapacityExceeded: {Name: "output capacity exceeded", Exhausted: true},
	StatusUnsupported:      {Name: "unsupported input"},
}

// Behavior scripts one invocation. The zero Behavior meshes normally.
type Behavior struct {
	// Status, when non-zero, is returned instead of meshing.
	Status  abi.Status
	Message string

	// Partial makes a failing EngineAllocated call still return an output
	// handle, as engines that leave partial output behind do.
	Partial bool

	// Corrupt edits a successful output before it is returned.
	Corrupt func(*abi.Region)

	// Panic, when non-nil, is raised before anything is allocated.
	Panic any
}

// Option configures an Engine.
type Option func(*Engine)

// WithOwnership selects the output ownership convention. The default is
// EngineAllocated.
func WithOwnership(o abi.Ownership) Option {
	return func(e *Engine) { e.ownership = o }
}

// Serial declares the engine unsafe for concurrent calls.
func Serial() Option {
	return func(e *Engine) { e.concurrent = false }
}

// WithName sets the name reported in Info.
func WithName(name string) Option {
	return func(e *Engine) { e.name = name }
}

// SupplyQuality makes the engine return quality scores itself when they
// are requested.
func SupplyQuality() Option {
	return func(e *Engine) { e.supplyQuality = true }
}

// Engine is an in-memory abi.Engine. It triangulates planar point clouds,
// echoes meshes when refinement is off and splits planar triangles when it
// is on. Every call, allocation and free is counted.
type Engine struct {
	name          string
	ownership     abi.Ownership
	concurrent    bool
	supplyQuality bool

	calls       atomic.Int64
	allocs      atomic.Int64
	frees       atomic.Int64
	inflight    atomic.Int32
	maxInflight atomic.Int32
	closed      atomic.Bool

	mu     sync.Mutex
	script []Behavior
	hook   func(*abi.Call)
}

// New returns a mock engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		name:       "enginetest",
		ownership:  abi.EngineAllocated,
		concurrent: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Script queues behaviours for the next calls, one per call in order.
// Calls beyond the script mesh normally.
func (e *Engine) Script(b ...Behavior) {
	e.mu.Lock()
	e.script = append(e.script, b...)
	e.mu.Unlock()
}

// OnInvoke installs a hook that runs at the start of every call, inside
// the engine. Tests use it to block calls or observe their inputs.
func (e *Engine) OnInvoke(fn func(*abi.Call)) {
	e.mu.Lock()
	e.hook = fn
	e.mu.Unlock()
}

// Calls returns the number of Invoke calls.
func (e *Engine) Calls() int { return int(e.calls.Load()) }

// Allocs returns the number of output handles the engine allocated.
func (e *Engine) Allocs() int { return int(e.allocs.Load()) }

// Frees returns the number of output handles released.
func (e *Engine) Frees() int { return int(e.frees.Load()) }

// Live returns the number of output handles not yet released.
func (e *Engine) Live() int { return e.Allocs() - e.Frees() }

// MaxConcurrent returns the largest number of simultaneous calls seen.
func (e *Engine) MaxConcurrent() int { return int(e.maxInflight.Load()) }

// Closed reports whether Close was called.
func (e *Engine) Closed() bool { return e.closed.Load() }

func (e *Engine) Info() abi.Info {
	return abi.Info{
		Name:           e.name,
		Version:        "mock",
		Ownership:      e.ownership,
		ConcurrentSafe: e.concurrent,
		Statuses:       Statuses,
	}
}

func (e *Engine) Close() error {
	e.closed.Store(true)
	return nil
}

func (e *Engine) Invoke(call *abi.Call) abi.Reply {
	e.calls.Add(1)
	n := e.inflight.Add(1)
	defer e.inflight.Add(-1)
	for {
		m := e.maxInflight.Load()
		if n <= m || e.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}

	e.mu.Lock()
	var b Behavior
	if len(e.script) > 0 {
		b = e.script[0]
		e.script = e.script[1:]
	}
	hook := e.hook
	e.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if b.Panic != nil {
		panic(b.Panic)
	}
	if e.closed.Load() {
		return abi.Reply{Status: StatusInvalidArgument, Message: "engine closed"}
	}
	if b.Status != abi.StatusOK {
		reply := abi.Reply{Status: b.Status, Message: b.Message}
		if b.Partial && e.ownership == abi.EngineAllocated {
			reply.Output = e.handle(&abi.Region{Dims: call.Input.Dims})
		}
		return reply
	}

	out, status, msg := mesh(&call.Input, &call.Params)
	if status != abi.StatusOK {
		return abi.Reply{Status: status, Message: msg}
	}
	if call.Params.Quality != 0 && e.supplyQuality {
		out.Quality = scores(out)
	}
	if b.Corrupt != nil {
		b.Corrupt(out)
	}

	if e.ownership == abi.CallerAllocated {
		if err := fill(call.Prealloc, out); err != nil {
			return abi.Reply{Status: StatusCapacityExceeded, Message: err.Error()}
		}
		return abi.Reply{}
	}
	return abi.Reply{Output: e.handle(out)}
}

func (e *Engine) handle(r *abi.Region) *abi.Buffers {
	e.allocs.Add(1)
	return abi.WrapRegion(r, func() { e.frees.Add(1) })
}

// fill copies out into the caller's region without growing any array.
func fill(dst, out *abi.Region) error {
	if dst == nil {
		return fmt.Errorf("no preallocated region")
	}
	if err := capacityFor(dst, out); err != nil {
		return err
	}
	dst.Dims = out.Dims
	dst.VertexCount, dst.EdgeCount, dst.TriaCount, dst.TetraCount =
		out.VertexCount, out.EdgeCount, out.TriaCount, out.TetraCount
	dst.Coords = append(dst.Coords[:0], out.Coords...)
	dst.VertexTags = append(dst.VertexTags[:0], out.VertexTags...)
	dst.Edges = append(dst.Edges[:0], out.Edges...)
	dst.EdgeTags = append(dst.EdgeTags[:0], out.EdgeTags...)
	dst.Triangles = append(dst.Triangles[:0], out.Triangles...)
	dst.TriaTags = append(dst.TriaTags[:0], out.TriaTags...)
	dst.Tetrahedra = append(dst.Tetrahedra[:0], out.Tetrahedra...)
	dst.TetraTags = append(dst.TetraTags[:0], out.TetraTags...)
	dst.Quality = append(dst.Quality[:0], out.Quality...)
	return nil
}

func capacityFor(dst, out *abi.Region) error {
	checks := []struct {
		name      string
		need, cap int
	}{
		{"coordinates", len(out.Coords), cap(dst.Coords)},
		{"vertex tags", len(out.VertexTags), cap(dst.VertexTags)},
		{"edges", len(out.Edges), cap(dst.Edges)},
		{"edge tags", len(out.EdgeTags), cap(dst.EdgeTags)},
		{"triangles", len(out.Triangles), cap(dst.Triangles)},
		{"triangle tags", len(out.TriaTags), cap(dst.TriaTags)},
		{"tetrahedra", len(out.Tetrahedra), cap(dst.Tetrahedra)},
		{"tetrahedron tags", len(out.TetraTags), cap(dst.TetraTags)},
		{"quality", len(out.Quality), cap(dst.Quality)},
	}
	for _, c := range checks {
		if c.need > c.cap {
			return fmt.Errorf("%s need %d slots, region has %d", c.name, c.need, c.cap)
		}
	}
	return nil
}
