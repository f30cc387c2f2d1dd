package jigsaw

import (
	"slices"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/quality"
)

// Request is one mesh generation: an input domain and a sparse option map
// validated by config.Build. A nil map uses every default.
type Request struct {
	Geometry *geometry.Descriptor
	Options  map[string]any
}

// Result is a successfully decoded mesh. It shares nothing with the engine
// or with other results.
type Result struct {
	mesh     *geometry.Descriptor
	quality  []float64
	computed bool
}

// Mesh returns the generated mesh.
func (r *Result) Mesh() *geometry.Descriptor { return r.mesh }

// HasQuality reports whether quality scores were requested and produced.
func (r *Result) HasQuality() bool { return r.quality != nil }

// Quality returns a copy of the per-cell scores, aligned with the cells of
// the mesh's top dimension, or nil.
func (r *Result) Quality() []float64 { return slices.Clone(r.quality) }

// QualityComputed reports that the scores were derived by the binding
// because the engine supplied none.
func (r *Result) QualityComputed() bool { return r.computed }

// QualitySummary summarises the scores; the zero Summary without them.
func (r *Result) QualitySummary() quality.Summary {
	return quality.Summarize(r.quality)
}
