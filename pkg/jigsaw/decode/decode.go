// Package decode turns engine output regions into descriptors.
//
// Decode is the only reader of an output region. It validates everything the
// engine declared before building anything, copies what it keeps out of the
// region and releases the region on every path.
package decode

import (
	"errors"
	"math"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/quality"
)

// Options says what the caller expects from the output.
type Options struct {
	// Dims is the dimensionality of the input geometry. Output of any other
	// dimensionality is corrupt. 0 accepts 2 or 3.
	Dims int

	// Quality requests per-cell scores. Scores are computed here when the
	// engine does not supply them.
	Quality bool
}

// Output is a decoded mesh.
type Output struct {
	Mesh *geometry.Descriptor

	// Quality is aligned with the cells of Mesh's top dimension. It is nil
	// unless requested.
	Quality []float64

	// Computed reports that Quality was derived here rather than supplied
	// by the engine.
	Computed bool
}

// Decode consumes buf. buf is released whether or not decoding succeeds;
// every failure is a CorruptOutput error.
func Decode(buf *abi.Buffers, opts Options) (*Output, error) {
	var out *Output
	err := buf.Consume(func(r *abi.Region) error {
		var err error
		out, err = decodeRegion(r, opts)
		return err
	})
	if err != nil {
		var me *mesherr.Error
		if errors.As(err, &me) && me.Kind == mesherr.KindCorruptOutput {
			return nil, err
		}
		return nil, mesherr.New(mesherr.StageDecode, mesherr.KindCorruptOutput).
			Detail("read output regions").
			Cause(err).
			Build()
	}
	return out, nil
}

func decodeRegion(r *abi.Region, opts Options) (*Output, error) {
	dims := int(r.Dims)
	if dims != 2 && dims != 3 {
		return nil, mesherr.CorruptOutput("output dimensionality %d", dims)
	}
	if opts.Dims != 0 && dims != opts.Dims {
		return nil, mesherr.CorruptOutput("output dimensionality %d, input was %d", dims, opts.Dims)
	}
	if err := checkCounts(r, dims); err != nil {
		return nil, err
	}
	for i, v := range r.Coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, mesherr.CorruptOutput("coordinate %d of vertex %d is %v", i%dims, i/dims, v)
		}
	}

	blocks := []struct {
		kind    geometry.Kind
		indices []int32
		tags    []int32
	}{
		{geometry.Edge2, r.Edges, r.EdgeTags},
		{geometry.Tria3, r.Triangles, r.TriaTags},
		{geometry.Tetra4, r.Tetrahedra, r.TetraTags},
	}
	flat := geometry.Flat{Dims: dims, Coords: r.Coords}
	if len(r.VertexTags) > 0 {
		flat.VertexTags = r.VertexTags
	}
	for _, b := range blocks {
		if len(b.indices) == 0 {
			continue
		}
		for i, v := range b.indices {
			if v < 0 || int(v) >= r.VertexCount {
				return nil, mesherr.CorruptOutput("%s %d references vertex %d of %d",
					b.kind, i/b.kind.Arity(), v, r.VertexCount)
			}
		}
		blk := geometry.Block{Kind: b.kind, Indices: b.indices}
		if len(b.tags) > 0 {
			blk.Tags = b.tags
		}
		flat.Blocks = append(flat.Blocks, blk)
	}

	top := r.TetraCount
	if top == 0 {
		top = r.TriaCount
	}
	if len(r.Quality) > 0 {
		if len(r.Quality) != top {
			return nil, mesherr.CorruptOutput("%d quality scores for %d cells", len(r.Quality), top)
		}
		for i, q := range r.Quality {
			if math.IsNaN(q) || math.IsInf(q, 0) {
				return nil, mesherr.CorruptOutput("quality score %d is %v", i, q)
			}
		}
	}

	mesh, err := flat.Descriptor()
	if err != nil {
		return nil, mesherr.New(mesherr.StageDecode, mesherr.KindCorruptOutput).
			Detail("output topology").
			Cause(err).
			Build()
	}

	out := &Output{Mesh: mesh}
	if opts.Quality {
		if len(r.Quality) > 0 {
			out.Quality = append([]float64(nil), r.Quality...)
		} else if top > 0 {
			out.Quality = quality.Cells(mesh)
			out.Computed = true
		}
	}
	return out, nil
}

// checkCounts compares every declared count with the array it describes.
func checkCounts(r *abi.Region, dims int) error {
	counts := []struct {
		name  string
		count int
		width int
		got   int
		tags  int
	}{
		{"vertex", r.VertexCount, dims, len(r.Coords), len(r.VertexTags)},
		{"edge2", r.EdgeCount, 2, len(r.Edges), len(r.EdgeTags)},
		{"tria3", r.TriaCount, 3, len(r.Triangles), len(r.TriaTags)},
		{"tetra4", r.TetraCount, 4, len(r.Tetrahedra), len(r.TetraTags)},
	}
	for _, c := range counts {
		if c.count < 0 || c.count > geometry.MaxVertices {
			return mesherr.CorruptOutput("declared %s count %d", c.name, c.count)
		}
		if c.count*c.width != c.got {
			return mesherr.CorruptOutput("declared %d %s entries, region holds %d values (want %d)",
				c.count, c.name, c.got, c.count*c.width)
		}
		if c.tags != 0 && c.tags != c.count {
			return mesherr.CorruptOutput("%d %s tags for %d entries", c.tags, c.name, c.count)
		}
	}
	return nil
}
