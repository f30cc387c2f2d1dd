package jigsaw

import "fmt"

// State is the lifecycle position of one request.
type State uint32

const (
	// StateBuilding: options and geometry are being validated.
	StateBuilding State = iota
	// StateValidated: marshalled and queued, the engine has not been called.
	StateValidated
	// StateInvoking: a worker is inside the native call.
	StateInvoking
	// StateSucceeded: the output decoded into a Result.
	StateSucceeded
	// StateNativeFailed: the engine reported a non-zero status or panicked.
	StateNativeFailed
	// StateCorruptOutput: the engine reported success but its output failed
	// validation.
	StateCorruptOutput
	// StateCanceled: the request was cancelled before the engine was called.
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateValidated:
		return "validated"
	case StateInvoking:
		return "invoking"
	case StateSucceeded:
		return "succeeded"
	case StateNativeFailed:
		return "native_failed"
	case StateCorruptOutput:
		return "corrupt_output"
	case StateCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

var transitions = map[State][]State{
	StateBuilding:  {StateValidated},
	StateValidated: {StateInvoking, StateCanceled},
	StateInvoking:  {StateSucceeded, StateNativeFailed, StateCorruptOutput},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// mustTransition panics on a transition the lifecycle does not allow. Such
// a transition is a bug in this package, never a caller error.
func mustTransition(from, to State) {
	if !canTransition(from, to) {
		panic(fmt.Sprintf("jigsaw: illegal request transition %s -> %s", from, to))
	}
}
