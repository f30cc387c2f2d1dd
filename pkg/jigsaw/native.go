package jigsaw

import "github.com/meshkit/jigsaw-go/pkg/jigsaw/internal/backend"

// NativeAvailable reports whether this binary links libjigsaw.
func NativeAvailable() bool { return backend.Built }

// OpenNative opens a session on libjigsaw. It returns ErrNotBuilt unless
// the binary was built with cgo and the jigsaw tag.
func OpenNative(opts ...Option) (*Session, error) {
	engine, err := backend.Open()
	if err != nil {
		return nil, remapError(err)
	}
	return Open(engine, opts...)
}
