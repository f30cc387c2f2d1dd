// Package backend hosts the thin cgo layer that links the binding to the
// native libjigsaw library. The real implementation lives behind the jigsaw
// build tag so that the rest of the repository compiles without cgo or the
// library:
//
//	CGO_CFLAGS=-I/opt/jigsaw/include CGO_LDFLAGS=-L/opt/jigsaw/lib \
//	    go build -tags jigsaw ./...
//
// Without the tag Open returns ErrNotBuilt.
package backend
