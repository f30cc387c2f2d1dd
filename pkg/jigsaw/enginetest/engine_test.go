package enginetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
)

func square() abi.Input {
	return abi.Input{Dims: 2, Coords: []float64{0, 0, 1, 0, 1, 1, 0, 1}}
}

func consume(t *testing.T, buf *abi.Buffers) *abi.Region {
	t.Helper()
	var out *abi.Region
	require.NoError(t, buf.Consume(func(r *abi.Region) error {
		cp := *r
		out = &cp
		return nil
	}))
	return out
}

func TestTriangulatesUnitSquare(t *testing.T) {
	eng := New()
	reply := eng.Invoke(&abi.Call{Input: square()})
	require.Equal(t, abi.StatusOK, reply.Status, reply.Message)

	r := consume(t, reply.Output)
	assert.Equal(t, 4, r.VertexCount)
	assert.Equal(t, 2, r.TriaCount)
	assert.Len(t, r.Triangles, 6)
	for _, q := range scores(r) {
		assert.Greater(t, q, 0.0, "triangles are counter-clockwise")
	}
	assert.Equal(t, 1, eng.Calls())
	assert.Equal(t, 1, eng.Allocs())
	assert.Equal(t, 0, eng.Live())
}

func TestInteriorPointIsInserted(t *testing.T) {
	in := square()
	in.Coords = append(in.Coords, 0.5, 0.25)
	reply := New().Invoke(&abi.Call{Input: in})
	require.Equal(t, abi.StatusOK, reply.Status)

	r := consume(t, reply.Output)
	assert.Equal(t, 4, r.TriaCount)
	assert.Contains(t, r.Triangles, int32(4))
}

func TestDegeneratePointCloud(t *testing.T) {
	tests := map[string][]float64{
		"two points": {0, 0, 1, 1},
		"collinear":  {0, 0, 1, 1, 2, 2, 3, 3},
		"coincident": {1, 1, 1, 1, 1, 1},
	}
	for name, coords := range tests {
		t.Run(name, func(t *testing.T) {
			eng := New()
			reply := eng.Invoke(&abi.Call{Input: abi.Input{Dims: 2, Coords: coords}})
			assert.Equal(t, StatusDegenerate, reply.Status)
			assert.Nil(t, reply.Output)
			assert.Equal(t, 0, eng.Allocs())
		})
	}
}

func TestPointCloudIn3DUnsupported(t *testing.T) {
	reply := New().Invoke(&abi.Call{Input: abi.Input{Dims: 3, Coords: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}}})
	assert.Equal(t, StatusUnsupported, reply.Status)
}

func TestEchoWithoutRefinement(t *testing.T) {
	in := abi.Input{
		Dims:       2,
		Coords:     []float64{0, 0, 1, 0, 0, 1},
		VertexTags: []int32{1, 2, 3},
		Triangles:  []int32{0, 1, 2},
		TriaTags:   []int32{7},
	}
	reply := New().Invoke(&abi.Call{Input: in})
	require.Equal(t, abi.StatusOK, reply.Status)

	r := consume(t, reply.Output)
	assert.Equal(t, in.Coords, r.Coords)
	assert.Equal(t, in.Triangles, r.Triangles)
	assert.Equal(t, in.TriaTags, r.TriaTags)
	assert.Equal(t, in.VertexTags, r.VertexTags)
}

func TestRefinementSplitsLargeTriangles(t *testing.T) {
	in := abi.Input{Dims: 2, Coords: []float64{0, 0, 1, 0, 0, 1}, Triangles: []int32{0, 1, 2}, TriaTags: []int32{7}}
	params := abi.Params{Refine: 1, SizeScale: abi.ScaleAbsolute, SizeMax: 0.1}
	reply := New().Invoke(&abi.Call{Input: in, Params: params})
	require.Equal(t, abi.StatusOK, reply.Status)

	r := consume(t, reply.Output)
	assert.Equal(t, 9, r.TriaCount, "two passes of three-way splits")
	assert.Equal(t, 3+1+3, r.VertexCount)
	for _, tag := range r.TriaTags {
		assert.Equal(t, int32(7), tag)
	}
}

func TestRefinementRespectsSizeHints(t *testing.T) {
	in := abi.Input{
		Dims:      2,
		Coords:    []float64{0, 0, 1, 0, 0, 1},
		SizeHints: []float64{5, 5, 5},
		Triangles: []int32{0, 1, 2},
	}
	params := abi.Params{Refine: 1, SizeScale: abi.ScaleAbsolute, SizeMax: 10}
	reply := New().Invoke(&abi.Call{Input: in, Params: params})
	require.Equal(t, abi.StatusOK, reply.Status)
	assert.Equal(t, 1, consume(t, reply.Output).TriaCount)
}

func TestScriptedStatusAndPartialOutput(t *testing.T) {
	eng := New()
	eng.Script(
		Behavior{Status: StatusOutOfMemory, Message: "cannot grow", Partial: true},
		Behavior{Status: StatusDegenerate},
	)

	first := eng.Invoke(&abi.Call{Input: square()})
	assert.Equal(t, StatusOutOfMemory, first.Status)
	assert.Equal(t, "cannot grow", first.Message)
	require.NotNil(t, first.Output)
	assert.Equal(t, 1, eng.Live())
	first.Output.Release()
	assert.Equal(t, 0, eng.Live())

	second := eng.Invoke(&abi.Call{Input: square()})
	assert.Equal(t, StatusDegenerate, second.Status)
	assert.Nil(t, second.Output)

	third := eng.Invoke(&abi.Call{Input: square()})
	assert.Equal(t, abi.StatusOK, third.Status, "script exhausted")
	third.Output.Release()
	assert.Equal(t, 0, eng.Live())
}

func TestScriptedPanic(t *testing.T) {
	eng := New()
	eng.Script(Behavior{Panic: "boom"})
	assert.PanicsWithValue(t, "boom", func() { eng.Invoke(&abi.Call{Input: square()}) })
	assert.Equal(t, 0, eng.Allocs())
}

func TestCorruptOutput(t *testing.T) {
	eng := New()
	eng.Script(Behavior{Corrupt: OutOfRangeIndex})
	reply := eng.Invoke(&abi.Call{Input: square()})
	require.Equal(t, abi.StatusOK, reply.Status)
	r := consume(t, reply.Output)
	assert.Equal(t, int32(9), r.Triangles[0])
}

func TestCallerAllocated(t *testing.T) {
	eng := New(WithOwnership(abi.CallerAllocated))
	region := abi.NewRegion(2, abi.Capacity{Vertices: 8, Triangles: 8})
	reply := eng.Invoke(&abi.Call{Input: square(), Prealloc: region})

	require.Equal(t, abi.StatusOK, reply.Status)
	assert.Nil(t, reply.Output)
	assert.Equal(t, 4, region.VertexCount)
	assert.Equal(t, 2, region.TriaCount)
	assert.Len(t, region.Triangles, 6)
	assert.Equal(t, 0, eng.Allocs())
}

func TestCallerAllocatedCapacityExceeded(t *testing.T) {
	eng := New(WithOwnership(abi.CallerAllocated))
	region := abi.NewRegion(2, abi.Capacity{Vertices: 4, Triangles: 1})
	reply := eng.Invoke(&abi.Call{Input: square(), Prealloc: region})

	assert.Equal(t, StatusCapacityExceeded, reply.Status)
	assert.Contains(t, reply.Message, "triangles")
	_, exhausted, ok := Statuses.Describe(int(reply.Status))
	assert.True(t, ok)
	assert.True(t, exhausted)
	assert.Zero(t, region.TriaCount)
}

func TestSupplyQuality(t *testing.T) {
	eng := New(SupplyQuality())
	reply := eng.Invoke(&abi.Call{Input: square(), Params: abi.Params{Quality: 1}})
	require.Equal(t, abi.StatusOK, reply.Status)
	assert.Len(t, consume(t, reply.Output).Quality, 2)

	reply = New().Invoke(&abi.Call{Input: square(), Params: abi.Params{Quality: 1}})
	assert.Empty(t, consume(t, reply.Output).Quality)
}

func TestConcurrentCallsAreCounted(t *testing.T) {
	eng := New()
	gate := make(chan struct{})
	var entered sync.WaitGroup
	entered.Add(4)
	eng.OnInvoke(func(*abi.Call) {
		entered.Done()
		<-gate
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Invoke(&abi.Call{Input: square()}).Output.Release()
		}()
	}
	entered.Wait()
	close(gate)
	wg.Wait()

	assert.Equal(t, 4, eng.Calls())
	assert.Equal(t, 4, eng.MaxConcurrent())
	assert.Equal(t, 4, eng.Frees())
	assert.Equal(t, 0, eng.Live())
}

func TestInfoAndClose(t *testing.T) {
	eng := New(Serial(), WithName("fake"))
	info := eng.Info()
	assert.Equal(t, "fake", info.Name)
	assert.False(t, info.ConcurrentSafe)
	assert.Equal(t, abi.EngineAllocated, info.Ownership)

	require.NoError(t, eng.Close())
	assert.True(t, eng.Closed())
	assert.Equal(t, StatusInvalidArgument, eng.Invoke(&abi.Call{Input: square()}).Status)
}
