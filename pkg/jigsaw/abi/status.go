package abi

// Status is the engine's integer outcome for one invocation.
type Status int32

const (
	// StatusOK is the only success value.
	StatusOK Status = 0

	// StatusPanic is recorded by the adapter when Invoke panicked instead of
	// returning. Engines never return it.
	StatusPanic Status = -1000
)

// StatusInfo documents one status code.
type StatusInfo struct {
	Name string

	// Exhausted marks codes that signal allocation failure or exceeded
	// capacity rather than a structural problem with the input.
	Exhausted bool
}

// StatusTable documents an engine's non-zero status codes.
type StatusTable map[Status]StatusInfo

// Describe implements mesherr.StatusDescriber.
func (t StatusTable) Describe(code int) (string, bool, bool) {
	if code == int(StatusPanic) {
		return "engine panicked", false, true
	}
	info, ok := t[Status(code)]
	return info.Name, info.Exhausted, ok
}
