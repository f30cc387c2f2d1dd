package jigsaw

import (
	"sync"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
)

// registry tracks the output handles of one session that have not been
// released yet.
type registry struct {
	mu   sync.Mutex
	next uint64
	live map[uint64]*abi.Buffers
}

func newRegistry() *registry {
	return &registry{next: 1, live: map[uint64]*abi.Buffers{}}
}

// track registers b until it is released. Nil handles are ignored.
func (r *registry) track(b *abi.Buffers) {
	if b == nil || b.Released() {
		return
	}
	r.mu.Lock()
	id := r.next
	r.next++
	r.live[id] = b
	r.mu.Unlock()
	b.AfterRelease(func() { r.del(id) })
}

func (r *registry) del(id uint64) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// releaseAll frees every handle still tracked and reports how many there
// were.
func (r *registry) releaseAll() int {
	r.mu.Lock()
	bufs := make([]*abi.Buffers, 0, len(r.live))
	for _, b := range r.live {
		bufs = append(bufs, b)
	}
	r.mu.Unlock()

	n := 0
	for _, b := range bufs {
		if b.Release() {
			n++
		}
	}
	return n
}

// regionPool recycles the regions preallocated for CallerAllocated
// engines.
type regionPool struct {
	pool sync.Pool
}

func (p *regionPool) get(dims int32, c abi.Capacity) *abi.Region {
	if r, ok := p.pool.Get().(*abi.Region); ok && fits(r, dims, c) {
		reset(r, dims)
		return r
	}
	return abi.NewRegion(dims, c)
}

func (p *regionPool) put(r *abi.Region) {
	if r != nil {
		p.pool.Put(r)
	}
}

func fits(r *abi.Region, dims int32, c abi.Capacity) bool {
	have := r.Capacity()
	top := c.Tetrahedra
	if top == 0 {
		top = c.Triangles
	}
	return cap(r.Coords) >= c.Vertices*int(dims) &&
		cap(r.VertexTags) >= c.Vertices &&
		have.Edges >= c.Edges && cap(r.EdgeTags) >= c.Edges &&
		have.Triangles >= c.Triangles && cap(r.TriaTags) >= c.Triangles &&
		have.Tetrahedra >= c.Tetrahedra && cap(r.TetraTags) >= c.Tetrahedra &&
		cap(r.Quality) >= top
}

func reset(r *abi.Region, dims int32) {
	*r = abi.Region{
		Dims:       dims,
		Coords:     r.Coords[:0],
		VertexTags: r.VertexTags[:0],
		Edges:      r.Edges[:0],
		EdgeTags:   r.EdgeTags[:0],
		Triangles:  r.Triangles[:0],
		TriaTags:   r.TriaTags[:0],
		Tetrahedra: r.Tetrahedra[:0],
		TetraTags:  r.TetraTags[:0],
		Quality:    r.Quality[:0],
	}
}
