// Package jigsaw drives the JIGSAW unstructured mesh generator from Go.
//
// A Session owns one engine and a bounded pool of workers that call it.
// Requests pair an immutable geometry.Descriptor with a sparse option map:
//
//	s, err := jigsaw.OpenNative(jigsaw.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	res, err := s.Generate(ctx, jigsaw.Request{
//	    Geometry: domain,
//	    Options:  map[string]any{"hfun_hmax": 0.05},
//	})
//
// Every failure is a *mesherr.Error; compare it with errors.Is against the
// mesherr sentinels or unpack it with errors.As for the stage, option and
// native status code. Validation failures are returned by Submit, before
// the engine is involved. Native failures are never retried.
//
// # Concurrency
//
// Submit queues a request and returns a Future. A request cancelled while
// queued never reaches the engine; one already inside the engine runs to
// completion and Wait reports it as cancelled. Output memory is released
// before a request's outcome becomes observable, whatever the outcome.
//
// OpenNative needs the binary to be built with cgo and -tags jigsaw; Open
// accepts any abi.Engine, such as the mock in enginetest.
package jigsaw
