package geometry

import (
	"math"
	"slices"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// MaxVertices is the largest vertex count an index of the engine's width
// can address.
const MaxVertices = math.MaxInt32

// Input is the caller-facing form of a geometry: one coordinate slice per
// vertex and one index tuple per entity. Optional sequences are either nil
// or hold exactly one value per vertex or entity.
type Input struct {
	Dims     int
	Vertices [][]float64

	Edges      [][2]int
	Triangles  [][3]int
	Tetrahedra [][4]int

	VertexTags   []int32
	SizeHints    []float64
	EdgeTags     []int32
	TriangleTags []int32
	TetraTags    []int32
}

// Block is one entity kind in flat form: Arity indices per entity.
type Block struct {
	Kind    Kind
	Indices []int32
	Tags    []int32
}

type block struct {
	indices []int32
	tags    []int32
}

// Descriptor is an immutable mesh or input domain: vertices, entity blocks
// per kind and optional tags and size hints. All accessors return copies or
// scalars; edits produce new descriptors.
type Descriptor struct {
	dims       int
	coords     []float64
	vertexTags []int32
	sizeHints  []float64
	blocks     [3]block
}

// New validates in and builds a descriptor from copies of its data.
func New(in Input) (*Descriptor, error) {
	if err := checkDims(in.Dims); err != nil {
		return nil, err
	}
	if len(in.Vertices) > MaxVertices {
		return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d vertices exceed the index width", len(in.Vertices))
	}

	coords := make([]float64, 0, len(in.Vertices)*in.Dims)
	for i, v := range in.Vertices {
		if len(v) != in.Dims {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
				"vertex %d has %d coordinates, want %d", i, len(v), in.Dims)
		}
		coords = append(coords, v...)
	}

	blocks := []Block{
		{Kind: Edge2, Indices: flatten(len(in.Edges), 2, func(i, j int) int { return in.Edges[i][j] }), Tags: in.EdgeTags},
		{Kind: Tria3, Indices: flatten(len(in.Triangles), 3, func(i, j int) int { return in.Triangles[i][j] }), Tags: in.TriangleTags},
		{Kind: Tetra4, Indices: flatten(len(in.Tetrahedra), 4, func(i, j int) int { return in.Tetrahedra[i][j] }), Tags: in.TetraTags},
	}
	return build(in.Dims, coords, in.VertexTags, in.SizeHints, blocks)
}

// Flat is a geometry in the engine's own layout: vertex-major coordinates
// and one flat index array per kind.
type Flat struct {
	Dims       int
	Coords     []float64
	VertexTags []int32
	SizeHints  []float64
	Blocks     []Block
}

// FromFlat builds a descriptor from vertex-major coordinates and flat entity
// blocks. The slices are copied.
func FromFlat(dims int, coords []float64, blocks ...Block) (*Descriptor, error) {
	return Flat{Dims: dims, Coords: coords, Blocks: blocks}.Descriptor()
}

// Descriptor validates f and builds a descriptor from copies of its data.
func (f Flat) Descriptor() (*Descriptor, error) {
	if err := checkDims(f.Dims); err != nil {
		return nil, err
	}
	if len(f.Coords)%f.Dims != 0 {
		return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d coordinates do not divide into %d-dimensional vertices", len(f.Coords), f.Dims)
	}
	if len(f.Coords)/f.Dims > MaxVertices {
		return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d vertices exceed the index width", len(f.Coords)/f.Dims)
	}
	return build(f.Dims, slices.Clone(f.Coords), f.VertexTags, f.SizeHints, f.Blocks)
}

func checkDims(dims int) error {
	if dims != 2 && dims != 3 {
		return mesherr.MalformedGeometry(mesherr.StageGeometry,
			"dimensionality %d is not 2 or 3", dims)
	}
	return nil
}

// flatten lays out n entities of the given arity, reading index j of
// entity i through at.
func flatten(n, arity int, at func(i, j int) int) []int32 {
	out := make([]int32, 0, n*arity)
	for i := 0; i < n; i++ {
		for j := 0; j < arity; j++ {
			// Out-of-range values are caught in build; clamp so the int32
			// conversion cannot wrap into a valid index.
			switch v := at(i, j); {
			case v < 0:
				out = append(out, -1)
			case v > MaxVertices:
				out = append(out, math.MaxInt32)
			default:
				out = append(out, int32(v))
			}
		}
	}
	return out
}

// build takes ownership of coords and copies everything else.
func build(dims int, coords []float64, vertexTags []int32, hints []float64, blocks []Block) (*Descriptor, error) {
	n := len(coords) / dims
	for i, v := range coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
				"coordinate %d of vertex %d is %v", i%dims, i/dims, v)
		}
	}
	d := &Descriptor{dims: dims, coords: coords}

	if vertexTags != nil {
		if len(vertexTags) != n {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
				"%d vertex tags for %d vertices", len(vertexTags), n)
		}
		d.vertexTags = slices.Clone(vertexTags)
	}
	if hints != nil {
		if err := checkHints(hints, n); err != nil {
			return nil, err
		}
		d.sizeHints = slices.Clone(hints)
	}

	for _, b := range blocks {
		if !b.Kind.valid() {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry, "unsupported entity %s", b.Kind)
		}
		if len(b.Indices) == 0 {
			if len(b.Tags) > 0 {
				return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
					"%d %s tags given without entities", len(b.Tags), b.Kind)
			}
			continue
		}
		if b.Kind.Dim() > dims {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
				"%s entities need at least %d dimensions, geometry has %d", b.Kind, b.Kind.Dim(), dims)
		}
		if err := checkBlock(b, n); err != nil {
			return nil, err
		}
		slot := &d.blocks[b.Kind-Edge2]
		if slot.indices != nil {
			return nil, mesherr.MalformedGeometry(mesherr.StageGeometry, "duplicate %s block", b.Kind)
		}
		slot.indices = slices.Clone(b.Indices)
		if b.Tags != nil {
			slot.tags = slices.Clone(b.Tags)
		}
	}
	return d, nil
}

func checkBlock(b Block, n int) error {
	arity := b.Kind.Arity()
	if len(b.Indices)%arity != 0 {
		return mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d %s indices are not a multiple of %d", len(b.Indices), b.Kind, arity)
	}
	count := len(b.Indices) / arity
	if b.Tags != nil && len(b.Tags) != count {
		return mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d %s tags for %d entities", len(b.Tags), b.Kind, count)
	}
	for e := 0; e < count; e++ {
		ent := b.Indices[e*arity : (e+1)*arity]
		for j, v := range ent {
			if v < 0 || int(v) >= n {
				return mesherr.MalformedGeometry(mesherr.StageGeometry,
					"%s %d references vertex %d, have %d vertices", b.Kind, e, v, n)
			}
			for _, w := range ent[:j] {
				if w == v {
					return mesherr.MalformedGeometry(mesherr.StageGeometry,
						"%s %d repeats vertex %d", b.Kind, e, v)
				}
			}
		}
	}
	return nil
}

func checkHints(hints []float64, n int) error {
	if len(hints) != n {
		return mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d size hints for %d vertices", len(hints), n)
	}
	for i, h := range hints {
		if !(h > 0) || math.IsInf(h, 0) {
			return mesherr.MalformedGeometry(mesherr.StageGeometry,
				"size hint %d is %v, want a positive finite value", i, h)
		}
	}
	return nil
}

// Dims returns the number of coordinates per vertex.
func (d *Descriptor) Dims() int { return d.dims }

// VertexCount returns the number of vertices.
func (d *Descriptor) VertexCount() int { return len(d.coords) / d.dims }

// Vertex returns a copy of the coordinates of vertex i. It panics if i is
// out of range.
func (d *Descriptor) Vertex(i int) []float64 {
	return slices.Clone(d.coords[i*d.dims : (i+1)*d.dims])
}

// Coord returns coordinate axis of vertex i.
func (d *Descriptor) Coord(i, axis int) float64 {
	if axis < 0 || axis >= d.dims {
		panic("geometry: axis out of range")
	}
	return d.coords[i*d.dims+axis]
}

// Coordinates returns a copy of all coordinates, vertex-major.
func (d *Descriptor) Coordinates() []float64 { return slices.Clone(d.coords) }

// Kinds returns the kinds that have at least one entity, lowest dimension
// first.
func (d *Descriptor) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if d.EntityCount(k) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// TopKind returns the highest-dimension kind present.
func (d *Descriptor) TopKind() (Kind, bool) {
	kinds := Kinds()
	for i := len(kinds) - 1; i >= 0; i-- {
		if d.EntityCount(kinds[i]) > 0 {
			return kinds[i], true
		}
	}
	return 0, false
}

// IsPointCloud reports whether the descriptor has no entities.
func (d *Descriptor) IsPointCloud() bool {
	_, ok := d.TopKind()
	return !ok
}

// EntityCount returns the number of entities of kind k.
func (d *Descriptor) EntityCount(k Kind) int {
	if !k.valid() {
		return 0
	}
	return len(d.blocks[k-Edge2].indices) / k.Arity()
}

// Entity returns the vertex indices of entity i of kind k. It panics if
// i is out of range.
func (d *Descriptor) Entity(k Kind, i int) []int {
	if !k.valid() {
		panic("geometry: unsupported kind " + k.String())
	}
	arity := k.Arity()
	src := d.blocks[k-Edge2].indices[i*arity : (i+1)*arity]
	out := make([]int, arity)
	for j, v := range src {
		out[j] = int(v)
	}
	return out
}

// Connectivity returns a copy of the flat index array of kind k.
func (d *Descriptor) Connectivity(k Kind) []int32 {
	if !k.valid() {
		return nil
	}
	return slices.Clone(d.blocks[k-Edge2].indices)
}

// EntityTag returns the tag of entity i of kind k, if tags were given.
func (d *Descriptor) EntityTag(k Kind, i int) (int32, bool) {
	if !k.valid() || d.blocks[k-Edge2].tags == nil {
		return 0, false
	}
	return d.blocks[k-Edge2].tags[i], true
}

// EntityTags returns a copy of the tags of kind k, or nil.
func (d *Descriptor) EntityTags(k Kind) []int32 {
	if !k.valid() {
		return nil
	}
	return slices.Clone(d.blocks[k-Edge2].tags)
}

// VertexTag returns the tag of vertex i, if tags were given.
func (d *Descriptor) VertexTag(i int) (int32, bool) {
	if d.vertexTags == nil {
		return 0, false
	}
	return d.vertexTags[i], true
}

// VertexTags returns a copy of the vertex tags, or nil.
func (d *Descriptor) VertexTags() []int32 { return slices.Clone(d.vertexTags) }

// HasSizeHints reports whether per-vertex size hints are present.
func (d *Descriptor) HasSizeHints() bool { return d.sizeHints != nil }

// SizeHint returns the size hint of vertex i, if hints were given.
func (d *Descriptor) SizeHint(i int) (float64, bool) {
	if d.sizeHints == nil {
		return 0, false
	}
	return d.sizeHints[i], true
}

// SizeHints returns a copy of the size hints, or nil.
func (d *Descriptor) SizeHints() []float64 { return slices.Clone(d.sizeHints) }

// Bounds returns the per-axis minimum and maximum coordinates. Both are nil
// for a descriptor without vertices.
func (d *Descriptor) Bounds() (lo, hi []float64) {
	n := d.VertexCount()
	if n == 0 {
		return nil, nil
	}
	lo = slices.Clone(d.coords[:d.dims])
	hi = slices.Clone(d.coords[:d.dims])
	for i := 1; i < n; i++ {
		for a := 0; a < d.dims; a++ {
			v := d.coords[i*d.dims+a]
			lo[a] = math.Min(lo[a], v)
			hi[a] = math.Max(hi[a], v)
		}
	}
	return lo, hi
}

// WithSizeHints returns a new descriptor with per-vertex size hints
// replaced. A nil slice removes them.
func (d *Descriptor) WithSizeHints(hints []float64) (*Descriptor, error) {
	if hints != nil {
		if err := checkHints(hints, d.VertexCount()); err != nil {
			return nil, err
		}
	}
	out := d.clone()
	out.sizeHints = slices.Clone(hints)
	return out, nil
}

// WithVertexTags returns a new descriptor with vertex tags replaced. A nil
// slice removes them.
func (d *Descriptor) WithVertexTags(tags []int32) (*Descriptor, error) {
	if tags != nil && len(tags) != d.VertexCount() {
		return nil, mesherr.MalformedGeometry(mesherr.StageGeometry,
			"%d vertex tags for %d vertices", len(tags), d.VertexCount())
	}
	out := d.clone()
	out.vertexTags = slices.Clone(tags)
	return out, nil
}

// Equal reports whether d and o describe the same vertices, entities, tags
// and hints.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.dims != o.dims ||
		!slices.Equal(d.coords, o.coords) ||
		!slices.Equal(d.vertexTags, o.vertexTags) ||
		!slices.Equal(d.sizeHints, o.sizeHints) {
		return false
	}
	for i := range d.blocks {
		if !slices.Equal(d.blocks[i].indices, o.blocks[i].indices) ||
			!slices.Equal(d.blocks[i].tags, o.blocks[i].tags) {
			return false
		}
	}
	return true
}

// clone shares the immutable backing arrays; callers replace the field they
// change with a fresh slice.
func (d *Descriptor) clone() *Descriptor {
	out := *d
	return &out
}
