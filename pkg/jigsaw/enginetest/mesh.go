package enginetest

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/quality"
)

// maxRefinePasses bounds how many times a triangle can be split.
const maxRefinePasses = 2

// mesh produces the engine's output for one call. Planar point clouds are
// triangulated, planar edge sets are triangulated when refinement is on,
// and planar triangles are split when refinement is on. Everything else is
// echoed.
func mesh(in *abi.Input, p *abi.Params) (*abi.Region, abi.Status, string) {
	out := &abi.Region{
		Dims:       in.Dims,
		Coords:     slices.Clone(in.Coords),
		VertexTags: slices.Clone(in.VertexTags),
		Edges:      slices.Clone(in.Edges),
		EdgeTags:   slices.Clone(in.EdgeTags),
		Triangles:  slices.Clone(in.Triangles),
		TriaTags:   slices.Clone(in.TriaTags),
		Tetrahedra: slices.Clone(in.Tetrahedra),
		TetraTags:  slices.Clone(in.TetraTags),
	}
	if in.VertexCount() == 0 {
		return out, abi.StatusOK, ""
	}

	planar := in.Dims == 2
	refine := p.Refine != 0
	cells := len(in.Triangles) > 0 || len(in.Tetrahedra) > 0

	if !in.HasConnectivity() && !planar {
		return nil, StatusUnsupported, fmt.Sprintf("point cloud in %d dimensions", in.Dims)
	}
	if planar && (!in.HasConnectivity() || (refine && !cells)) {
		tris, ok := triangulate(points(in.Coords))
		if !ok {
			return nil, StatusDegenerate, fmt.Sprintf("%d points span no triangle", in.VertexCount())
		}
		out.Triangles = tris
		out.TriaTags = nil
	}
	if planar && refine {
		refineTriangles(out, in.SizeHints, p)
	}
	counts(out)
	return out, abi.StatusOK, ""
}

func counts(r *abi.Region) {
	if r.Dims > 0 {
		r.VertexCount = len(r.Coords) / int(r.Dims)
	}
	r.EdgeCount = len(r.Edges) / 2
	r.TriaCount = len(r.Triangles) / 3
	r.TetraCount = len(r.Tetrahedra) / 4
}

func points(coords []float64) []r2.Point {
	pts := make([]r2.Point, len(coords)/2)
	for i := range pts {
		pts[i] = r2.Point{X: coords[2*i], Y: coords[2*i+1]}
	}
	return pts
}

func orient(o, a, b r2.Point) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}

// triangulate fans the convex hull of pts and then splits the triangle
// containing each strictly interior point. Points on the hull boundary
// or coincident with another point stay unconnected.
func triangulate(pts []r2.Point) ([]int32, bool) {
	hull := convexHull(pts)
	if len(hull) < 3 {
		return nil, false
	}
	tris := make([]int32, 0, 3*len(pts))
	for i := 1; i+1 < len(hull); i++ {
		tris = append(tris, hull[0], hull[i], hull[i+1])
	}

	onHull := make(map[int32]bool, len(hull))
	for _, h := range hull {
		onHull[h] = true
	}
	eps := 1e-12 * extent(pts)
	for i := range pts {
		v := int32(i)
		if onHull[v] {
			continue
		}
		for t := 0; t < len(tris); t += 3 {
			a, b, c := tris[t], tris[t+1], tris[t+2]
			if orient(pts[a], pts[b], pts[v]) > eps &&
				orient(pts[b], pts[c], pts[v]) > eps &&
				orient(pts[c], pts[a], pts[v]) > eps {
				tris[t+2] = v
				tris = append(tris, b, c, v, c, a, v)
				break
			}
		}
	}
	return tris, true
}

// convexHull returns the strict convex hull of pts in counter-clockwise
// order, without collinear points.
func convexHull(pts []r2.Point) []int32 {
	idx := make([]int32, len(pts))
	for i := range idx {
		idx[i] = int32(i)
	}
	sort.Slice(idx, func(i, j int) bool {
		a, b := pts[idx[i]], pts[idx[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	if len(idx) < 3 {
		return nil
	}

	hull := make([]int32, 0, 2*len(idx))
	for _, i := range idx {
		for len(hull) >= 2 && orient(pts[hull[len(hull)-2]], pts[hull[len(hull)-1]], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	lower := len(hull) + 1
	for k := len(idx) - 2; k >= 0; k-- {
		i := idx[k]
		for len(hull) >= lower && orient(pts[hull[len(hull)-2]], pts[hull[len(hull)-1]], pts[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	return hull[:len(hull)-1]
}

func extent(pts []r2.Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	rect := r2.RectFromPoints(pts...)
	s := rect.Size()
	return s.X*s.X + s.Y*s.Y
}

// refineTriangles splits every triangle whose longest edge exceeds the
// target size at its centroid, up to maxRefinePasses times.
func refineTriangles(r *abi.Region, hints []float64, p *abi.Params) {
	target := p.SizeMax
	if p.SizeScale == abi.ScaleRelative {
		target *= math.Sqrt(extent(points(r.Coords)))
	}
	passes := maxRefinePasses
	if p.MaxIterations > 0 && int(p.MaxIterations) < passes {
		passes = int(p.MaxIterations)
	}
	tagged := len(r.TriaTags) > 0
	vtagged := len(r.VertexTags) > 0

	for pass := 0; pass < passes; pass++ {
		pts := points(r.Coords)
		var tris, tags []int32
		split := false
		for t := 0; t < len(r.Triangles); t += 3 {
			a, b, c := r.Triangles[t], r.Triangles[t+1], r.Triangles[t+2]
			var tag int32
			if tagged {
				tag = r.TriaTags[t/3]
			}
			h := target
			for _, v := range []int32{a, b, c} {
				if int(v) < len(hints) && hints[v] < h {
					h = hints[v]
				}
			}
			pa, pb, pc := pts[a], pts[b], pts[c]
			longest := math.Max(pb.Sub(pa).Norm(), math.Max(pc.Sub(pb).Norm(), pa.Sub(pc).Norm()))
			if h <= 0 || longest <= h {
				tris = append(tris, a, b, c)
				tags = append(tags, tag)
				continue
			}
			m := pa.Add(pb).Add(pc).Mul(1.0 / 3)
			v := int32(len(pts))
			pts = append(pts, m)
			r.Coords = append(r.Coords, m.X, m.Y)
			if vtagged {
				r.VertexTags = append(r.VertexTags, 0)
			}
			tris = append(tris, a, b, v, b, c, v, c, a, v)
			tags = append(tags, tag, tag, tag)
			split = true
		}
		r.Triangles = tris
		if tagged {
			r.TriaTags = tags
		}
		if !split {
			return
		}
	}
}

// scores computes the quality of r's top-dimension cells.
func scores(r *abi.Region) []float64 {
	d, err := geometry.FromFlat(int(r.Dims), r.Coords,
		geometry.Block{Kind: geometry.Edge2, Indices: r.Edges},
		geometry.Block{Kind: geometry.Tria3, Indices: r.Triangles},
		geometry.Block{Kind: geometry.Tetra4, Indices: r.Tetrahedra},
	)
	if err != nil {
		return nil
	}
	return quality.Cells(d)
}

// OutOfRangeIndex corrupts r by pointing its first cell past the last
// vertex.
func OutOfRangeIndex(r *abi.Region) {
	switch {
	case len(r.Tetrahedra) > 0:
		r.Tetrahedra[0] = int32(r.VertexCount + 5)
	case len(r.Triangles) > 0:
		r.Triangles[0] = int32(r.VertexCount + 5)
	case len(r.Edges) > 0:
		r.Edges[0] = int32(r.VertexCount + 5)
	}
}

// OverstateVertices corrupts r by declaring one vertex more than it wrote.
func OverstateVertices(r *abi.Region) {
	r.VertexCount++
}

// NaNCoordinate corrupts r's first coordinate.
func NaNCoordinate(r *abi.Region) {
	if len(r.Coords) > 0 {
		r.Coords[0] = math.NaN()
	}
}

// Truncate corrupts r by dropping every vertex, leaving cells dangling.
func Truncate(r *abi.Region) {
	r.Coords = r.Coords[:0]
	r.VertexTags = r.VertexTags[:0]
	r.VertexCount = 0
}
