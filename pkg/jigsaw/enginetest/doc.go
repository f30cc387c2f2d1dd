// Package enginetest provides an in-memory mesh engine for testing and examples.
//
// Engine implements abi.Engine without cgo, so the whole binding layer can
// be exercised on machines where libjigsaw is not installed. It counts
// every call, allocation and free, which lets tests assert that no output
// handle outlives its invocation.
//
// # Features
//
//   - Both output ownership conventions (WithOwnership)
//   - Triangulation of planar point clouds
//   - Echo of the input mesh when refinement is off
//   - Centroid splitting of planar triangles when refinement is on
//   - Scripted statuses, partial output on failure, corrupt output and panics
//   - An invocation hook for blocking calls in concurrency tests
//
// # Usage
//
//	eng := enginetest.New(enginetest.WithOwnership(abi.CallerAllocated))
//	s, _ := jigsaw.Open(eng)
//	defer s.Close()
//
//	eng.Script(enginetest.Behavior{Status: enginetest.StatusDegenerate})
//	_, err := s.Generate(ctx, req) // a NativeFailure naming status 6
//
//	if eng.Live() != 0 {
//	    t.Fatalf("%d output handles leaked", eng.Live())
//	}
//
// # Limitations
//
// The triangulation is a convex-hull fan with interior point insertion. It
// is not a conforming Delaunay mesher, ignores every tuning parameter except
// the size bounds, and does not mesh point clouds in three dimensions
// (StatusUnsupported). Not suitable for production use.
package enginetest
