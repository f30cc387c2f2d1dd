package abi

// Kernel selects the engine's meshing algorithm.
type Kernel int32

const (
	KernelDelfront Kernel = iota + 1
	KernelDelaunay
)

// SizeScale selects how hfun bounds are interpreted.
type SizeScale int32

const (
	ScaleRelative SizeScale = iota + 1
	ScaleAbsolute
)

// Params is the fixed-width parameter block handed to the engine. Every
// field has the engine's numeric width; flags are 0 or 1.
type Params struct {
	Verbosity int32
	Seed      int32

	Kernel        Kernel
	MeshDims      int32
	Refine        int32
	MaxIterations int32
	Tolerance     float64
	RadiusEdge2   float64
	RadiusEdge3   float64

	SizeScale SizeScale
	SizeMax   float64
	SizeMin   float64

	OptimIterations int32
	OptimQTol       float64
	OptimQLim       float64
	OptimZip        int32
	OptimDiv        int32

	Quality int32
}

// Input is the flattened geometry handed to the engine. Coordinates are
// vertex-major with Dims values per vertex; connectivity arrays hold arity
// indices per entity.
type Input struct {
	Dims   int32
	Coords []float64

	VertexTags []int32
	SizeHints  []float64

	Edges      []int32
	EdgeTags   []int32
	Triangles  []int32
	TriaTags   []int32
	Tetrahedra []int32
	TetraTags  []int32
}

// VertexCount is the number of vertices described by Coords.
func (in *Input) VertexCount() int {
	if in.Dims <= 0 {
		return 0
	}
	return len(in.Coords) / int(in.Dims)
}

// HasConnectivity reports whether any entity block is non-empty; inputs
// without connectivity are point clouds.
func (in *Input) HasConnectivity() bool {
	return len(in.Edges) > 0 || len(in.Triangles) > 0 || len(in.Tetrahedra) > 0
}

// Footprint estimates the bytes held by the input arrays.
func (in *Input) Footprint() int64 {
	f := 8 * int64(len(in.Coords)+len(in.SizeHints))
	f += 4 * int64(len(in.VertexTags)+len(in.Edges)+len(in.EdgeTags)+
		len(in.Triangles)+len(in.TriaTags)+len(in.Tetrahedra)+len(in.TetraTags))
	return f
}

// Region is a view of one output. The counts are what the engine declared;
// the arrays are what it actually wrote. A Region obtained from Buffers is
// only valid inside Consume.
type Region struct {
	Dims int32

	VertexCount int
	EdgeCount   int
	TriaCount   int
	TetraCount  int

	Coords     []float64
	VertexTags []int32
	Edges      []int32
	EdgeTags   []int32
	Triangles  []int32
	TriaTags   []int32
	Tetrahedra []int32
	TetraTags  []int32

	// Quality is aligned with the cells of the top dimension, or empty.
	Quality []float64
}

// NewRegion allocates a region with zero length and the given capacity,
// for use as Call.Prealloc.
func NewRegion(dims int32, c Capacity) *Region {
	d := int(dims)
	topCells := c.Tetrahedra
	if topCells == 0 {
		topCells = c.Triangles
	}
	return &Region{
		Dims:       dims,
		Coords:     make([]float64, 0, c.Vertices*d),
		VertexTags: make([]int32, 0, c.Vertices),
		Edges:      make([]int32, 0, 2*c.Edges),
		EdgeTags:   make([]int32, 0, c.Edges),
		Triangles:  make([]int32, 0, 3*c.Triangles),
		TriaTags:   make([]int32, 0, c.Triangles),
		Tetrahedra: make([]int32, 0, 4*c.Tetrahedra),
		TetraTags:  make([]int32, 0, c.Tetrahedra),
		Quality:    make([]float64, 0, topCells),
	}
}

// Capacity reports the capacity of each array group of r.
func (r *Region) Capacity() Capacity {
	d := int(r.Dims)
	if d <= 0 {
		d = 1
	}
	return Capacity{
		Vertices:   cap(r.Coords) / d,
		Edges:      cap(r.Edges) / 2,
		Triangles:  cap(r.Triangles) / 3,
		Tetrahedra: cap(r.Tetrahedra) / 4,
	}
}

// Footprint estimates the bytes held by r's arrays at full capacity.
func (r *Region) Footprint() int64 {
	f := 8 * int64(cap(r.Coords)+cap(r.Quality))
	f += 4 * int64(cap(r.VertexTags)+cap(r.Edges)+cap(r.EdgeTags)+
		cap(r.Triangles)+cap(r.TriaTags)+cap(r.Tetrahedra)+cap(r.TetraTags))
	return f
}

// Footprint is the size in bytes of a region of capacity c, as allocated by
// NewRegion.
func (c Capacity) Footprint(dims int32) int64 {
	top := c.Tetrahedra
	if top == 0 {
		top = c.Triangles
	}
	f := 8 * int64(c.Vertices*int(dims)+top)
	f += 4 * int64(c.Vertices+3*c.Edges+4*c.Triangles+5*c.Tetrahedra)
	return f
}
