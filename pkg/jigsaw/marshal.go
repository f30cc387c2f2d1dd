package jigsaw

import (
	"math"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/config"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// marshal copies d and cfg into the engine's layout. The descriptor already
// enforces topology; this re-checks what only matters at the native
// boundary.
func marshal(d *geometry.Descriptor, cfg config.Config) (abi.Input, abi.Params, error) {
	if d == nil {
		return abi.Input{}, abi.Params{}, mesherr.MalformedGeometry(mesherr.StageGeometry, "request has no geometry")
	}
	if d.VertexCount() > math.MaxInt32 {
		return abi.Input{}, abi.Params{}, mesherr.MalformedGeometry(mesherr.StageMarshal,
			"%d vertices overflow the native index width", d.VertexCount())
	}
	for _, k := range geometry.Kinds() {
		if n := d.EntityCount(k); n > math.MaxInt32 {
			return abi.Input{}, abi.Params{}, mesherr.MalformedGeometry(mesherr.StageMarshal,
				"%d %s entities overflow the native index width", n, k)
		}
	}
	if cfg.MeshDims() > d.Dims() {
		return abi.Input{}, abi.Params{}, mesherr.InvalidConfiguration("mesh_dims",
			"%d exceeds the geometry's dimensionality %d", cfg.MeshDims(), d.Dims())
	}

	in := abi.Input{
		Dims:       int32(d.Dims()),
		Coords:     d.Coordinates(),
		VertexTags: d.VertexTags(),
		SizeHints:  d.SizeHints(),
		Edges:      d.Connectivity(geometry.Edge2),
		EdgeTags:   d.EntityTags(geometry.Edge2),
		Triangles:  d.Connectivity(geometry.Tria3),
		TriaTags:   d.EntityTags(geometry.Tria3),
		Tetrahedra: d.Connectivity(geometry.Tetra4),
		TetraTags:  d.EntityTags(geometry.Tetra4),
	}
	return in, params(cfg, d.Dims()), nil
}

func params(cfg config.Config, dims int) abi.Params {
	p := abi.Params{
		Verbosity:       int32(cfg.Verbosity()),
		Seed:            int32(cfg.Seed()),
		Kernel:          abi.KernelDelfront,
		MeshDims:        int32(cfg.MeshDims()),
		Refine:          flag(cfg.Refine()),
		MaxIterations:   int32(cfg.MaxIterations()),
		Tolerance:       cfg.Tolerance(),
		RadiusEdge2:     cfg.RadiusEdge2(),
		RadiusEdge3:     cfg.RadiusEdge3(),
		SizeScale:       abi.ScaleRelative,
		SizeMax:         cfg.SizeMax(),
		SizeMin:         cfg.SizeMin(),
		OptimIterations: int32(cfg.OptimizationPasses()),
		OptimQTol:       cfg.OptimizationQTol(),
		OptimQLim:       cfg.OptimizationQLim(),
		OptimZip:        flag(cfg.OptimizationZip()),
		OptimDiv:        flag(cfg.OptimizationDiv()),
		Quality:         flag(cfg.Quality()),
	}
	if cfg.Algorithm() == config.Delaunay {
		p.Kernel = abi.KernelDelaunay
	}
	if cfg.SizeScale() == config.Absolute {
		p.SizeScale = abi.ScaleAbsolute
	}
	if p.MeshDims == 0 {
		p.MeshDims = int32(dims)
	}
	if !cfg.Optimization() {
		p.OptimIterations = 0
	}
	return p
}

func flag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
