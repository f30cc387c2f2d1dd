//go:build !cgo || !jigsaw || windows

package backend

import "github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"

// Built reports whether the native library is linked in.
const Built = false

// Open returns ErrNotBuilt in builds without the native library.
func Open() (abi.Engine, error) {
	return nil, ErrNotBuilt
}
