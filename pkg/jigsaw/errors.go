package jigsaw

import (
	"errors"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/internal/backend"
)

var (
	// ErrSessionClosed is returned by every Session method after Close,
	// including a second Close.
	ErrSessionClosed = errors.New("jigsaw: session closed")

	// ErrNotBuilt reports that the native library was not linked into the
	// current binary. Build with cgo and -tags jigsaw to enable it.
	ErrNotBuilt = errors.New("jigsaw: native library not built")

	// ErrNilEngine is returned by Open when no engine is given.
	ErrNilEngine = errors.New("jigsaw: nil engine")
)

// remapError converts backend errors to public API errors.
func remapError(err error) error {
	if errors.Is(err, backend.ErrNotBuilt) {
		return ErrNotBuilt
	}
	return err
}
