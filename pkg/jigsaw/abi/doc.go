// Package abi is the call contract between the binding layer and a native
// mesh-generation engine.
//
// The contract is deliberately flat: an Input of vertex-major coordinates
// and per-kind connectivity arrays, a fixed-width Params block, and a Reply
// carrying a Status plus the output regions. Nothing in this package uses
// cgo; the libjigsaw implementation lives in internal/backend and tests use
// enginetest.
//
// # Output ownership
//
// Who allocates output regions varies between engine builds, so every
// engine declares it in Info.Ownership:
//
//   - EngineAllocated: the engine allocates inside Invoke and returns a
//     Buffers handle whose release function runs the engine's deallocator
//     (for libjigsaw, jigsaw_free_msh_t). The handle may be returned on
//     failure too, when the engine leaves partial output behind.
//   - CallerAllocated: the adapter allocates Call.Prealloc from a capacity
//     estimate; the engine reslices each array to what it wrote and sets
//     the declared counts. An engine that runs out of capacity returns a
//     status its table marks as Exhausted.
//
// Either way the caller ends up holding exactly one Buffers handle, which
// is consumed or released exactly once.
//
// # Buffers
//
// A Buffers handle has two terminal operations, Consume and Release.
// Whichever runs first frees the memory; every later call reports
// ErrConsumed and frees nothing, so double frees and reads after decoding
// cannot happen through the handle:
//
//	err := out.Consume(func(r *abi.Region) error {
//	    coords := append([]float64(nil), r.Coords...) // copy before returning
//	    ...
//	})
package abi
