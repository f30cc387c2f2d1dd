package mesherr

import "fmt"

// StatusDescriber resolves a native status code against the documented
// status table of one engine version.
type StatusDescriber interface {
	// Describe returns the documented name of code and whether the code
	// signals resource exhaustion. ok is false for undocumented codes.
	Describe(code int) (name string, exhausted bool, ok bool)
}

// FromStatus translates a non-zero native status into a typed error. The
// original code is always attached. An engine-supplied message takes
// precedence over the table name; undocumented codes still produce a
// NativeFailure that names the code.
func FromStatus(table StatusDescriber, code int, message string) *Error {
	kind := KindNativeFailure
	name, exhausted, ok := "", false, false
	if table != nil {
		name, exhausted, ok = table.Describe(code)
	}
	if exhausted {
		kind = KindResourceExhausted
	}

	b := New(StageInvoke, kind).Code(code)
	switch {
	case message != "":
		b.Message(message)
		if ok && name != message {
			b.Detail("%s", name)
		}
	case ok:
		b.Message(name)
	default:
		b.Message(fmt.Sprintf("undocumented status %d", code))
	}
	return b.Build()
}

// FromPanic translates a recovered panic raised while the engine ran.
func FromPanic(code int, recovered any) *Error {
	return New(StageInvoke, KindNativeFailure).
		Code(code).
		Message("engine panicked").
		Detail("%v", recovered).
		Build()
}
