package jigsaw_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/enginetest"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
)

var ownerships = []abi.Ownership{abi.EngineAllocated, abi.CallerAllocated}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustGeometry(t *testing.T, in geometry.Input) *geometry.Descriptor {
	t.Helper()
	d, err := geometry.New(in)
	require.NoError(t, err)
	return d
}

func unitSquare(t *testing.T) *geometry.Descriptor {
	return mustGeometry(t, geometry.Input{
		Dims:     2,
		Vertices: [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	})
}

func collinear(t *testing.T) *geometry.Descriptor {
	return mustGeometry(t, geometry.Input{
		Dims:     2,
		Vertices: [][]float64{{0, 0}, {1, 1}, {2, 2}},
	})
}

func openSession(t *testing.T, eng abi.Engine, opts ...jigsaw.Option) *jigsaw.Session {
	t.Helper()
	s, err := jigsaw.Open(eng, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// gate holds every engine call until opened.
type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func blockCalls(t *testing.T, eng *enginetest.Engine) *gate {
	g := &gate{entered: make(chan struct{}, 64), release: make(chan struct{})}
	eng.OnInvoke(func(*abi.Call) {
		g.entered <- struct{}{}
		<-g.release
	})
	// Registered after openSession's cleanup, so it runs first and Close
	// never waits on a held call.
	t.Cleanup(g.open)
	return g
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("engine was not called")
	}
}

func (g *gate) open() { g.once.Do(func() { close(g.release) }) }
