//go:build cgo && jigsaw && !windows

package backend

/*
#cgo LDFLAGS: -ljigsaw
#cgo linux CFLAGS: -I/usr/local/include
#cgo linux LDFLAGS: -L/usr/local/lib
#include <stdlib.h>
#include "lib_jigsaw.h"
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
)

// Built reports whether the native library is linked in.
const Built = true

type engine struct {
	closed atomic.Bool
}

// Open binds libjigsaw. The library keeps no global state, so one engine
// serves any number of concurrent calls.
func Open() (abi.Engine, error) {
	return &engine{}, nil
}

func (e *engine) Info() abi.Info { return info() }

func (e *engine) Close() error {
	e.closed.Store(true)
	return nil
}

// Invoke runs jigsaw() on inputs with connectivity and tripod() on point
// clouds. The output msh_t is allocated here with C.calloc so that it can
// outlive the call; its arrays belong to the library.
func (e *engine) Invoke(call *abi.Call) abi.Reply {
	if e.closed.Load() {
		return abi.Reply{Status: StatusInvalidArgument, Message: "engine closed"}
	}

	jig := (*C.jigsaw_jig_t)(C.calloc(1, C.size_t(unsafe.Sizeof(C.jigsaw_jig_t{}))))
	defer C.free(unsafe.Pointer(jig))
	C.jigsaw_init_jig_t(jig)
	setParams(jig, &call.Params)

	geom := newMsh()
	defer freeMsh(geom)
	fillMsh(geom, &call.Input)

	var hfun *C.jigsaw_msh_t
	if len(call.Input.SizeHints) > 0 {
		hfun = newMsh()
		defer freeMsh(hfun)
		fillMsh(hfun, &call.Input)
		C.jigsaw_alloc_reals(&hfun._value, C.size_t(len(call.Input.SizeHints)))
		vals := unsafe.Slice(hfun._value._data, len(call.Input.SizeHints))
		for i, h := range call.Input.SizeHints {
			vals[i] = C.real_t(h)
		}
		jig._hfun_scal = C.JIGSAW_HFUN_ABSOLUTE
	}

	out := newMsh()
	var status C.indx_t
	switch {
	case !call.Input.HasConnectivity():
		status = C.tripod(jig, geom, nil, out)
	case call.Params.Refine == 0:
		// Seeding the mesh with the geometry and allowing no refinement
		// steps returns the input topology.
		status = C.jigsaw(jig, geom, geom, hfun, out)
	default:
		status = C.jigsaw(jig, geom, nil, hfun, out)
	}

	dims := call.Input.Dims
	buf := abi.NewBuffers(
		func() (*abi.Region, error) { return readMsh(out, dims), nil },
		func() { freeMsh(out) },
	)
	return abi.Reply{Status: abi.Status(status), Output: buf}
}

func setParams(jig *C.jigsaw_jig_t, p *abi.Params) {
	jig._verbosity = C.indx_t(p.Verbosity)
	jig._geom_seed = C.indx_t(p.Seed)

	switch p.Kernel {
	case abi.KernelDelaunay:
		jig._mesh_kern = C.JIGSAW_KERN_DELAUNAY
	default:
		jig._mesh_kern = C.JIGSAW_KERN_DELFRONT
	}
	jig._mesh_dims = C.indx_t(p.MeshDims)
	switch {
	case p.Refine == 0:
		jig._mesh_iter = 0
	case p.MaxIterations > 0:
		jig._mesh_iter = C.indx_t(p.MaxIterations)
	}
	jig._mesh_eps1 = C.real_t(p.Tolerance)
	jig._mesh_rad2 = C.real_t(p.RadiusEdge2)
	jig._mesh_rad3 = C.real_t(p.RadiusEdge3)

	switch p.SizeScale {
	case abi.ScaleAbsolute:
		jig._hfun_scal = C.JIGSAW_HFUN_ABSOLUTE
	default:
		jig._hfun_scal = C.JIGSAW_HFUN_RELATIVE
	}
	jig._hfun_hmax = C.real_t(p.SizeMax)
	jig._hfun_hmin = C.real_t(p.SizeMin)

	jig._optm_iter = C.indx_t(p.OptimIterations)
	jig._optm_qtol = C.real_t(p.OptimQTol)
	jig._optm_qlim = C.real_t(p.OptimQLim)
	jig._optm_zip_ = C.indx_t(p.OptimZip)
	jig._optm_div_ = C.indx_t(p.OptimDiv)
}

func newMsh() *C.jigsaw_msh_t {
	m := (*C.jigsaw_msh_t)(C.calloc(1, C.size_t(unsafe.Sizeof(C.jigsaw_msh_t{}))))
	C.jigsaw_init_msh_t(m)
	m._flags = C.JIGSAW_EUCLIDEAN_MESH
	return m
}

func freeMsh(m *C.jigsaw_msh_t) {
	C.jigsaw_free_msh_t(m)
	C.free(unsafe.Pointer(m))
}

// fillMsh copies in into library-allocated arrays of m.
func fillMsh(m *C.jigsaw_msh_t, in *abi.Input) {
	n := in.VertexCount()
	tag := func(tags []int32, i int) C.indx_t {
		if len(tags) == 0 {
			return 0
		}
		return C.indx_t(tags[i])
	}

	if in.Dims == 2 {
		C.jigsaw_alloc_vert2(&m._vert2, C.size_t(n))
		verts := unsafe.Slice(m._vert2._data, n)
		for i := range verts {
			verts[i]._ppos[0] = C.real_t(in.Coords[2*i])
			verts[i]._ppos[1] = C.real_t(in.Coords[2*i+1])
			verts[i]._itag = tag(in.VertexTags, i)
		}
	} else {
		C.jigsaw_alloc_vert3(&m._vert3, C.size_t(n))
		verts := unsafe.Slice(m._vert3._data, n)
		for i := range verts {
			verts[i]._ppos[0] = C.real_t(in.Coords[3*i])
			verts[i]._ppos[1] = C.real_t(in.Coords[3*i+1])
			verts[i]._ppos[2] = C.real_t(in.Coords[3*i+2])
			verts[i]._itag = tag(in.VertexTags, i)
		}
	}

	if k := len(in.Edges) / 2; k > 0 {
		C.jigsaw_alloc_edge2(&m._edge2, C.size_t(k))
		ents := unsafe.Slice(m._edge2._data, k)
		for i := range ents {
			ents[i]._node[0] = C.indx_t(in.Edges[2*i])
			ents[i]._node[1] = C.indx_t(in.Edges[2*i+1])
			ents[i]._itag = tag(in.EdgeTags, i)
		}
	}
	if k := len(in.Triangles) / 3; k > 0 {
		C.jigsaw_alloc_tria3(&m._tria3, C.size_t(k))
		ents := unsafe.Slice(m._tria3._data, k)
		for i := range ents {
			for j := 0; j < 3; j++ {
				ents[i]._node[j] = C.indx_t(in.Triangles[3*i+j])
			}
			ents[i]._itag = tag(in.TriaTags, i)
		}
	}
	if k := len(in.Tetrahedra) / 4; k > 0 {
		C.jigsaw_alloc_tria4(&m._tria4, C.size_t(k))
		ents := unsafe.Slice(m._tria4._data, k)
		for i := range ents {
			for j := 0; j < 4; j++ {
				ents[i]._node[j] = C.indx_t(in.Tetrahedra[4*i+j])
			}
			ents[i]._itag = tag(in.TetraTags, i)
		}
	}
}

// readMsh copies m into Go memory. Counts come from the array headers, so
// the declared counts always match; index validation is the decoder's job.
func readMsh(m *C.jigsaw_msh_t, dims int32) *abi.Region {
	r := &abi.Region{Dims: dims}

	switch {
	case m._vert3._size > 0:
		r.Dims = 3
		n := int(m._vert3._size)
		verts := unsafe.Slice(m._vert3._data, n)
		r.VertexCount = n
		r.Coords = make([]float64, 0, 3*n)
		r.VertexTags = make([]int32, 0, n)
		for _, v := range verts {
			r.Coords = append(r.Coords, float64(v._ppos[0]), float64(v._ppos[1]), float64(v._ppos[2]))
			r.VertexTags = append(r.VertexTags, int32(v._itag))
		}
	case m._vert2._size > 0:
		r.Dims = 2
		n := int(m._vert2._size)
		verts := unsafe.Slice(m._vert2._data, n)
		r.VertexCount = n
		r.Coords = make([]float64, 0, 2*n)
		r.VertexTags = make([]int32, 0, n)
		for _, v := range verts {
			r.Coords = append(r.Coords, float64(v._ppos[0]), float64(v._ppos[1]))
			r.VertexTags = append(r.VertexTags, int32(v._itag))
		}
	}

	if n := int(m._edge2._size); n > 0 {
		r.EdgeCount = n
		r.Edges = make([]int32, 0, 2*n)
		r.EdgeTags = make([]int32, 0, n)
		for _, e := range unsafe.Slice(m._edge2._data, n) {
			r.Edges = append(r.Edges, int32(e._node[0]), int32(e._node[1]))
			r.EdgeTags = append(r.EdgeTags, int32(e._itag))
		}
	}
	if n := int(m._tria3._size); n > 0 {
		r.TriaCount = n
		r.Triangles = make([]int32, 0, 3*n)
		r.TriaTags = make([]int32, 0, n)
		for _, t := range unsafe.Slice(m._tria3._data, n) {
			r.Triangles = append(r.Triangles, int32(t._node[0]), int32(t._node[1]), int32(t._node[2]))
			r.TriaTags = append(r.TriaTags, int32(t._itag))
		}
	}
	if n := int(m._tria4._size); n > 0 {
		r.TetraCount = n
		r.Tetrahedra = make([]int32, 0, 4*n)
		r.TetraTags = make([]int32, 0, n)
		for _, t := range unsafe.Slice(m._tria4._data, n) {
			r.Tetrahedra = append(r.Tetrahedra,
				int32(t._node[0]), int32(t._node[1]), int32(t._node[2]), int32(t._node[3]))
			r.TetraTags = append(r.TetraTags, int32(t._itag))
		}
	}
	return r
}
