package mesherr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Stage names the part of the request pipeline that produced an error.
type Stage string

const (
	StageGeometry Stage = "geometry" // descriptor construction
	StageConfig   Stage = "config"   // option validation
	StageMarshal  Stage = "marshal"  // conversion into the native layout
	StageQueue    Stage = "queue"    // admission to the worker pool
	StageInvoke   Stage = "invoke"   // the native call itself
	StageDecode   Stage = "decode"   // output validation and conversion
)

// Kind is the closed set of failure categories a caller can act on.
type Kind string

const (
	KindMalformedGeometry    Kind = "malformed_geometry"
	KindInvalidConfiguration Kind = "invalid_configuration"
	KindUnknownOption        Kind = "unknown_option"
	KindNativeFailure        Kind = "native_failure"
	KindCorruptOutput        Kind = "corrupt_output"
	KindResourceExhausted    Kind = "resource_exhausted"
	KindCanceled             Kind = "canceled"
)

// Retryable reports whether the same request may succeed when resubmitted.
// Only exhaustion is transient; native failures and corrupt output repeat
// for identical input.
func (k Kind) Retryable() bool {
	return k == KindResourceExhausted
}

// Error is the single error type returned across the package tree.
type Error struct {
	Cause   error
	Stage   Stage
	Kind    Kind
	Option  string
	Detail  string
	Message string
	Code    int
	HasCode bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Option != "" {
		b.WriteString(" option ")
		b.WriteString(strconv.Quote(e.Option))
	}

	if e.HasCode {
		b.WriteString(" (status ")
		b.WriteString(strconv.Itoa(e.Code))
		b.WriteByte(')')
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Detail != "" {
		if e.Message != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so callers can compare against the Err* sentinels.
// A target with a Stage set must also match the stage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Stage == "" || t.Stage == e.Stage
}

// Sentinels for errors.Is checks. They carry no stage and so match any.
var (
	ErrMalformedGeometry    = &Error{Kind: KindMalformedGeometry}
	ErrInvalidConfiguration = &Error{Kind: KindInvalidConfiguration}
	ErrUnknownOption        = &Error{Kind: KindUnknownOption}
	ErrNativeFailure        = &Error{Kind: KindNativeFailure}
	ErrCorruptOutput        = &Error{Kind: KindCorruptOutput}
	ErrResourceExhausted    = &Error{Kind: KindResourceExhausted}
	ErrCanceled             = &Error{Kind: KindCanceled}
)

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Option records the offending option name.
func (b *Builder) Option(name string) *Builder {
	b.err.Option = name
	return b
}

// Code attaches a native status code.
func (b *Builder) Code(code int) *Builder {
	b.err.Code = code
	b.err.HasCode = true
	return b
}

// Message sets the engine-supplied message.
func (b *Builder) Message(msg string) *Builder {
	b.err.Message = msg
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	b.err.Detail = fmt.Sprintf(msg, args...)
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// MalformedGeometry reports bad input topology or dimensionality.
func MalformedGeometry(stage Stage, format string, args ...any) *Error {
	return New(stage, KindMalformedGeometry).Detail(format, args...).Build()
}

// InvalidConfiguration reports an option whose value violates a constraint.
func InvalidConfiguration(option, format string, args ...any) *Error {
	return New(StageConfig, KindInvalidConfiguration).Option(option).Detail(format, args...).Build()
}

// UnknownOption reports an unrecognised option name.
func UnknownOption(option, suggestion string) *Error {
	b := New(StageConfig, KindUnknownOption).Option(option)
	if suggestion != "" {
		b.Detail("did you mean %q?", suggestion)
	}
	return b.Build()
}

// CorruptOutput reports output that the engine claimed as successful but
// that failed validation.
func CorruptOutput(format string, args ...any) *Error {
	return New(StageDecode, KindCorruptOutput).Detail(format, args...).Build()
}

// ResourceExhausted reports saturation of a bounded resource.
func ResourceExhausted(stage Stage, format string, args ...any) *Error {
	return New(stage, KindResourceExhausted).Detail(format, args...).Build()
}

// Canceled wraps a context error observed at the given stage.
func Canceled(stage Stage, cause error, detail string) *Error {
	return New(stage, KindCanceled).Cause(cause).Detail("%s", detail).Build()
}
