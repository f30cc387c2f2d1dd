package abi

// Ownership states who allocates an engine's output regions and therefore
// who frees them.
type Ownership uint8

const (
	// EngineAllocated engines allocate output inside Invoke and return a
	// Buffers handle whose release runs the engine's own deallocator.
	EngineAllocated Ownership = iota + 1

	// CallerAllocated engines write into Call.Prealloc, reslicing each array
	// to the length they produced and setting the declared counts. The
	// adapter owns and releases those regions.
	CallerAllocated
)

func (o Ownership) String() string {
	switch o {
	case EngineAllocated:
		return "engine-allocated"
	case CallerAllocated:
		return "caller-allocated"
	default:
		return "unknown"
	}
}

// Info describes one engine build. It is part of the call contract: the
// ownership convention and the status table are pinned per engine version.
type Info struct {
	// Name identifies the engine, e.g. "libjigsaw".
	Name string

	// Version is the engine's self-reported version; may be empty.
	Version string

	// Ownership is the engine's output ownership convention.
	Ownership Ownership

	// ConcurrentSafe reports whether independent Invoke calls may run in
	// parallel. Engines that are not get a single worker.
	ConcurrentSafe bool

	// Statuses documents the engine's non-zero status codes.
	Statuses StatusTable
}

// Capacity bounds the regions preallocated for a CallerAllocated engine.
type Capacity struct {
	Vertices   int
	Edges      int
	Triangles  int
	Tetrahedra int
}

// Call is everything the engine receives for a single invocation. All
// slices are copies owned by the call; the engine must not retain them
// after Invoke returns.
type Call struct {
	Input  Input
	Params Params

	// Prealloc is non-nil only for CallerAllocated engines.
	Prealloc *Region
}

// Reply is what a single invocation produced.
type Reply struct {
	Status  Status
	Message string

	// Output is set by EngineAllocated engines, possibly on failure too
	// when the engine leaves partial output behind. CallerAllocated
	// engines leave it nil.
	Output *Buffers
}

// Engine is the native call boundary. Implementations block in Invoke for
// as long as the computation takes; there is no way to interrupt a running
// call.
type Engine interface {
	// Info describes the engine build. It must be constant for the life of
	// the engine.
	Info() Info

	// Invoke runs one mesh generation.
	Invoke(call *Call) Reply

	// Close releases engine-wide resources. No Invoke may be running.
	Close() error
}
