// Package internalcheck holds source-level policy tests for the module.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail on code that breaks a rule the compiler cannot enforce: cgo and
// unsafe stay inside internal/backend, errors are matched with errors.Is,
// and log messages are constant strings.
//
// # Internal Use Only
//
// This package has no API. It is not intended to be imported.
package internalcheck
