package jigsaw

import (
	"context"
	"sync"
	"time"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/decode"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// job is one validated request on its way through a worker.
type job struct {
	future    *Future
	ctx       context.Context
	call      abi.Call
	capacity  abi.Capacity
	footprint int64
	quality   bool

	mu      sync.Mutex
	stop    func() bool
	started bool
}

// setStop records the cancellation watch of the request's context. A watch
// registered after the worker picked the job up is stopped at once.
func (j *job) setStop(stop func() bool) {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		stop()
		return
	}
	j.stop = stop
	j.mu.Unlock()
}

func (j *job) stopWatch() {
	j.mu.Lock()
	j.started = true
	stop := j.stop
	j.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// run executes on a pool worker. The engine is called at most once; every
// output handle it produces is released before the outcome is published.
func (s *Session) run(j *job) {
	f := j.future
	// From here on the worker decides; the context watch only matters
	// while the job waits in the queue.
	j.stopWatch()

	err := j.ctx.Err()
	if err == nil {
		err = s.ctx.Err()
	}
	if err != nil {
		s.ctrl.ReleaseMemory(j.footprint)
		f.complete(StateValidated, StateCanceled, nil,
			mesherr.Canceled(mesherr.StageQueue, err, "canceled before invocation"))
		return
	}
	if !f.advance(StateValidated, StateInvoking) {
		s.ctrl.ReleaseMemory(j.footprint)
		return
	}

	start := time.Now()
	if s.info.Ownership == abi.CallerAllocated {
		j.call.Prealloc = s.regions.get(j.call.Input.Dims, j.capacity)
	}
	reply, recovered := s.invoke(&j.call)
	buf := s.output(&j.call, &reply)
	s.live.track(buf)

	to, res, err := s.finish(j, reply, recovered, buf)
	elapsed := time.Since(start)
	s.ctrl.ReleaseMemory(j.footprint)
	f.complete(StateInvoking, to, res, err)

	ctx := context.Background()
	switch {
	case f.isAbandoned():
		s.log.Error(ctx, "result abandoned", "request", f.ID(), "state", to.String(), "duration", elapsed)
	case err != nil:
		s.log.Warn(ctx, "request failed", "request", f.ID(), "state", to.String(), "duration", elapsed, "error", err)
	default:
		mesh := res.Mesh()
		top, _ := mesh.TopKind()
		s.log.Debug(ctx, "request done",
			"request", f.ID(),
			"duration", elapsed,
			"vertices", mesh.VertexCount(),
			"cells", mesh.EntityCount(top),
		)
	}
}

// invoke calls the engine, converting a panic into StatusPanic.
func (s *Session) invoke(call *abi.Call) (reply abi.Reply, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			reply = abi.Reply{Status: abi.StatusPanic}
			recovered = r
		}
	}()
	return s.engine.Invoke(call), nil
}

// output returns the single handle owning reply's regions, whichever side
// allocated them.
func (s *Session) output(call *abi.Call, reply *abi.Reply) *abi.Buffers {
	if s.info.Ownership == abi.EngineAllocated {
		return reply.Output
	}
	if reply.Output != nil {
		// Not part of the CallerAllocated contract, but the handle still
		// owns memory.
		reply.Output.Release()
	}
	region := call.Prealloc
	call.Prealloc = nil
	return abi.WrapRegion(region, func() { s.regions.put(region) })
}

// finish turns the reply into the request's terminal state. buf is
// released on every path.
func (s *Session) finish(j *job, reply abi.Reply, recovered any, buf *abi.Buffers) (State, *Result, error) {
	if reply.Status != abi.StatusOK {
		buf.Release()
		if recovered != nil {
			return StateNativeFailed, nil, mesherr.FromPanic(int(abi.StatusPanic), recovered)
		}
		return StateNativeFailed, nil, mesherr.FromStatus(s.info.Statuses, int(reply.Status), reply.Message)
	}

	out, err := decode.Decode(buf, decode.Options{
		Dims:    int(j.call.Input.Dims),
		Quality: j.quality,
	})
	if err != nil {
		return StateCorruptOutput, nil, err
	}
	if out.Mesh.VertexCount() == 0 && j.call.Input.VertexCount() > 0 {
		return StateCorruptOutput, nil, mesherr.CorruptOutput("engine reported success with an empty mesh")
	}
	return StateSucceeded, &Result{mesh: out.Mesh, quality: out.Quality, computed: out.Computed}, nil
}
