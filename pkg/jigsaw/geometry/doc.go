// Package geometry describes the domains handed to the mesh engine and the
// meshes it returns.
//
// A Descriptor is immutable. Build one from nested sequences with New, or
// from engine-layout arrays with FromFlat:
//
//	d, err := geometry.New(geometry.Input{
//	    Dims:      2,
//	    Vertices:  [][]float64{{0, 0}, {1, 0}, {0, 1}},
//	    Triangles: [][3]int{{0, 1, 2}},
//	})
//
// Construction fails with a mesherr.ErrMalformedGeometry error that names
// the offending vertex or entity. Indices are zero-based.
package geometry
