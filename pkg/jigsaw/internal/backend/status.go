package backend

import (
	"errors"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
)

// ErrNotBuilt reports that the native library was not linked into the
// current binary (cgo disabled, jigsaw tag absent, or Windows).
var ErrNotBuilt = errors.New("jigsaw/internal/backend: native library not built")

// Status codes documented in jigsaw_const.h.
const (
	StatusUnknownError    abi.Status = -1
	StatusFileNotLocated  abi.Status = 2
	StatusFileNotCreated  abi.Status = 3
	StatusNetcdfNotFound  abi.Status = 4
	StatusInvalidArgument abi.Status = 5
)

// Statuses is the status table of the supported libjigsaw releases. None
// of its codes signals exhaustion: allocation failures surface as
// StatusUnknownError.
var Statuses = abi.StatusTable{
	StatusUnknownError:    {Name: "unknown error"},
	StatusFileNotLocated:  {Name: "file not located"},
	StatusFileNotCreated:  {Name: "file not created"},
	StatusNetcdfNotFound:  {Name: "netcdf library not found"},
	StatusInvalidArgument: {Name: "invalid argument"},
}

// info describes libjigsaw. Output mesh structures are allocated by the
// library and freed with jigsaw_free_msh_t.
func info() abi.Info {
	return abi.Info{
		Name:           "libjigsaw",
		Ownership:      abi.EngineAllocated,
		ConcurrentSafe: true,
		Statuses:       Statuses,
	}
}
