package config

// Algorithm names a meshing kernel.
type Algorithm string

const (
	// Delfront is the frontal-Delaunay kernel.
	Delfront Algorithm = "delfront"
	// Delaunay is the restricted Delaunay refinement kernel.
	Delaunay Algorithm = "delaunay"
)

// Scale says how the size bounds are interpreted.
type Scale string

const (
	// Relative bounds are fractions of the geometry's bounding-box diagonal.
	Relative Scale = "relative"
	// Absolute bounds are lengths in geometry units.
	Absolute Scale = "absolute"
)

// Config is a validated, complete set of generation options. The zero value
// is not valid; obtain one from Default or Build. Config values are
// comparable and safe to share.
type Config struct {
	algorithm     Algorithm
	meshDims      int
	refine        bool
	maxIterations int
	tolerance     float64
	radiusEdge2   float64
	radiusEdge3   float64

	hfunScale Scale
	hfunHMax  float64
	hfunHMin  float64

	optimization bool
	optimPasses  int
	optimQTol    float64
	optimQLim    float64
	optimZip     bool
	optimDiv     bool

	seed      int
	verbosity int
	quality   bool
}

// Default returns the configuration produced by an empty option map.
func Default() Config {
	var c Config
	for _, o := range options {
		o.set(&c, o.def)
	}
	return c
}

// Algorithm is the meshing kernel ("algorithm").
func (c Config) Algorithm() Algorithm { return c.algorithm }

// MeshDims is the topological dimension to mesh; 0 matches the geometry.
func (c Config) MeshDims() int { return c.meshDims }

// Refine reports whether the engine may insert vertices ("refine"). With
// refinement off the input mesh is returned as given.
func (c Config) Refine() bool { return c.refine }

// MaxIterations bounds refinement steps; 0 means unbounded.
func (c Config) MaxIterations() int { return c.maxIterations }

// Tolerance is the relative geometric tolerance ("tolerance").
func (c Config) Tolerance() float64 { return c.tolerance }

// RadiusEdge2 bounds the radius-edge ratio of triangles ("radius_edge_2").
func (c Config) RadiusEdge2() float64 { return c.radiusEdge2 }

// RadiusEdge3 bounds the radius-edge ratio of tetrahedra ("radius_edge_3").
func (c Config) RadiusEdge3() float64 { return c.radiusEdge3 }

// SizeScale says whether SizeMax and SizeMin are absolute or relative to
// the bounding box diagonal ("hfun_scale").
func (c Config) SizeScale() Scale { return c.hfunScale }

// SizeMax is the largest allowed edge length ("hfun_hmax").
func (c Config) SizeMax() float64 { return c.hfunHMax }

// SizeMin is the smallest allowed edge length ("hfun_hmin").
func (c Config) SizeMin() float64 { return c.hfunHMin }

// Optimization reports whether mesh optimisation runs after refinement.
func (c Config) Optimization() bool { return c.optimization }

// OptimizationPasses is 0 whenever optimisation is off.
func (c Config) OptimizationPasses() int {
	return c.optimPasses
}

// OptimizationQTol is the quality change below which a pass counts as
// converged ("optimization_qtol").
func (c Config) OptimizationQTol() float64 { return c.optimQTol }

// OptimizationQLim is the quality threshold for cells the optimiser
// targets ("optimization_qlim").
func (c Config) OptimizationQLim() float64 { return c.optimQLim }

// OptimizationZip reports whether the optimiser may merge vertices.
func (c Config) OptimizationZip() bool { return c.optimZip }

// OptimizationDiv reports whether the optimiser may split edges.
func (c Config) OptimizationDiv() bool { return c.optimDiv }

// Seed seeds the engine's randomised steps.
func (c Config) Seed() int { return c.seed }

// Verbosity is the engine's own log level ("verbosity").
func (c Config) Verbosity() int { return c.verbosity }

// Quality reports whether per-cell quality scores are requested.
func (c Config) Quality() bool { return c.quality }

// Map returns every option with its effective value. Build(c.Map()) == c.
func (c Config) Map() map[string]any {
	out := make(map[string]any, len(options))
	for _, o := range options {
		out[o.name] = o.get(c)
	}
	return out
}

// Names returns the recognised option names in table order.
func Names() []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.name
	}
	return out
}
