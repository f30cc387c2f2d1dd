// Package quality computes per-cell area-length scores for triangles and
// tetrahedra.
//
// Scores are normalised so that an equilateral cell scores 1 and a
// degenerate cell scores 0. Planar triangles and tetrahedra carry the sign
// of their orientation, so inverted cells score below zero.
package quality

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
)

const (
	triaScale  = 6.928203230275509 // 4 * sqrt(3)
	tetraScale = 8.485281374238571 // 6 * sqrt(2)
)

// Tria2 scores a planar triangle.
func Tria2(a, b, c r2.Point) float64 {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	area := 0.5 * ab.Cross(c.Sub(a))
	return triaScore(area, ab.Dot(ab)+bc.Dot(bc)+ca.Dot(ca))
}

// Tria3 scores a triangle embedded in three dimensions. Orientation is
// undefined there, so the score is never negative.
func Tria3(a, b, c r3.Vector) float64 {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	area := 0.5 * ab.Cross(c.Sub(a)).Norm()
	return triaScore(area, ab.Norm2()+bc.Norm2()+ca.Norm2())
}

func triaScore(area, sumSq float64) float64 {
	if sumSq == 0 {
		return 0
	}
	return triaScale * area / sumSq
}

// Tetra scores a tetrahedron. Positive orientation means d lies on the side
// of abc given by the right-hand rule.
func Tetra(a, b, c, d r3.Vector) float64 {
	ab, ac, ad := b.Sub(a), c.Sub(a), d.Sub(a)
	vol := ab.Dot(ac.Cross(ad)) / 6

	bc, bd, cd := c.Sub(b), d.Sub(b), d.Sub(c)
	lrms := (ab.Norm2() + ac.Norm2() + ad.Norm2() + bc.Norm2() + bd.Norm2() + cd.Norm2()) / 6
	if lrms == 0 {
		return 0
	}
	return tetraScale * vol / math.Pow(lrms, 1.5)
}

// Cells scores every cell of d's top dimension, in entity order. It returns
// nil when d has no triangles or tetrahedra.
func Cells(d *geometry.Descriptor) []float64 {
	top, ok := d.TopKind()
	if !ok || top == geometry.Edge2 {
		return nil
	}
	n := d.EntityCount(top)
	out := make([]float64, n)
	conn := d.Connectivity(top)
	arity := top.Arity()
	for i := 0; i < n; i++ {
		e := conn[i*arity : (i+1)*arity]
		switch {
		case top == geometry.Tetra4:
			out[i] = Tetra(vec3(d, e[0]), vec3(d, e[1]), vec3(d, e[2]), vec3(d, e[3]))
		case d.Dims() == 2:
			out[i] = Tria2(vec2(d, e[0]), vec2(d, e[1]), vec2(d, e[2]))
		default:
			out[i] = Tria3(vec3(d, e[0]), vec3(d, e[1]), vec3(d, e[2]))
		}
	}
	return out
}

func vec2(d *geometry.Descriptor, i int32) r2.Point {
	return r2.Point{X: d.Coord(int(i), 0), Y: d.Coord(int(i), 1)}
}

func vec3(d *geometry.Descriptor, i int32) r3.Vector {
	v := r3.Vector{X: d.Coord(int(i), 0), Y: d.Coord(int(i), 1)}
	if d.Dims() == 3 {
		v.Z = d.Coord(int(i), 2)
	}
	return v
}
