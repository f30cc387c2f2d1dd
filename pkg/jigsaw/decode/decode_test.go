package decode_test

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/decode"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

func squareRegion() *abi.Region {
	return &abi.Region{
		Dims:        2,
		VertexCount: 4,
		TriaCount:   2,
		Coords:      []float64{0, 0, 1, 0, 1, 1, 0, 1},
		Triangles:   []int32{0, 1, 2, 0, 2, 3},
	}
}

func wrap(r *abi.Region, frees *atomic.Int32) *abi.Buffers {
	return abi.WrapRegion(r, func() { frees.Add(1) })
}

func TestDecodeSquare(t *testing.T) {
	var frees atomic.Int32
	region := squareRegion()
	out, err := decode.Decode(wrap(region, &frees), decode.Options{Dims: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(1), frees.Load())

	assert.Equal(t, 4, out.Mesh.VertexCount())
	assert.Equal(t, 2, out.Mesh.EntityCount(geometry.Tria3))
	assert.Nil(t, out.Quality)

	region.Coords[0] = 99
	assert.Equal(t, 0.0, out.Mesh.Coord(0, 0), "decoded mesh must not alias the region")
}

func TestDecodeComputesQuality(t *testing.T) {
	var frees atomic.Int32
	out, err := decode.Decode(wrap(squareRegion(), &frees), decode.Options{Dims: 2, Quality: true})
	require.NoError(t, err)
	require.Len(t, out.Quality, 2)
	assert.True(t, out.Computed)
	assert.Greater(t, out.Quality[0], 0.0)
}

func TestDecodeKeepsEngineQuality(t *testing.T) {
	var frees atomic.Int32
	r := squareRegion()
	r.Quality = []float64{0.5, 0.25}
	out, err := decode.Decode(wrap(r, &frees), decode.Options{Quality: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25}, out.Quality)
	assert.False(t, out.Computed)
}

func TestDecodeRejectsCorruptOutput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*abi.Region)
	}{
		{"vertex count", func(r *abi.Region) { r.VertexCount = 5 }},
		{"negative count", func(r *abi.Region) { r.TriaCount = -1 }},
		{"tria count", func(r *abi.Region) { r.TriaCount = 3 }},
		{"index range", func(r *abi.Region) { r.Triangles[5] = 4 }},
		{"negative index", func(r *abi.Region) { r.Triangles[0] = -2 }},
		{"repeated index", func(r *abi.Region) { r.Triangles[1] = 0 }},
		{"nan coordinate", func(r *abi.Region) { r.Coords[3] = math.NaN() }},
		{"dimensionality", func(r *abi.Region) { r.Dims = 3 }},
		{"tag count", func(r *abi.Region) { r.TriaTags = []int32{1} }},
		{"quality length", func(r *abi.Region) { r.Quality = []float64{1} }},
		{"quality value", func(r *abi.Region) { r.Quality = []float64{1, math.Inf(1)} }},
		{"tetra in plane", func(r *abi.Region) {
			r.TetraCount = 1
			r.Tetrahedra = []int32{0, 1, 2, 3}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var frees atomic.Int32
			r := squareRegion()
			tt.mutate(r)
			out, err := decode.Decode(wrap(r, &frees), decode.Options{Dims: 2, Quality: true})
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mesherr.ErrCorruptOutput), "got %v", err)
			assert.Equal(t, mesherr.KindCorruptOutput, mesherr.KindOf(err))
			assert.Equal(t, int32(1), frees.Load(), "buffers are released on failure")
		})
	}
}

func TestDecodeConsumedBuffers(t *testing.T) {
	var frees atomic.Int32
	buf := wrap(squareRegion(), &frees)
	buf.Release()

	_, err := decode.Decode(buf, decode.Options{})
	assert.True(t, errors.Is(err, mesherr.ErrCorruptOutput))
	assert.True(t, errors.Is(err, abi.ErrConsumed))
	assert.Equal(t, int32(1), frees.Load())

	_, err = decode.Decode(nil, decode.Options{})
	assert.True(t, errors.Is(err, abi.ErrNoOutput))
}

func TestDecodeTags(t *testing.T) {
	var frees atomic.Int32
	r := squareRegion()
	r.VertexTags = []int32{1, 1, 2, 2}
	r.TriaTags = []int32{7, 8}
	r.EdgeCount = 1
	r.Edges = []int32{0, 1}

	out, err := decode.Decode(wrap(r, &frees), decode.Options{Dims: 2})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1, 2, 2}, out.Mesh.VertexTags())
	assert.Equal(t, []int32{7, 8}, out.Mesh.EntityTags(geometry.Tria3))
	assert.Nil(t, out.Mesh.EntityTags(geometry.Edge2))
	assert.Equal(t, 1, out.Mesh.EntityCount(geometry.Edge2))
}
