package jigsaw

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/config"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/internal/workers"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/logging"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// Session is an opened engine together with the workers that call it. A
// Session is safe for concurrent use; all state belongs to the session, so
// independent sessions never interact.
type Session struct {
	engine abi.Engine
	info   abi.Info
	opts   sessionOptions
	log    logging.Logger

	pool    *workers.Pool
	ctrl    *workers.Controller
	live    *registry
	regions regionPool

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	nextID atomic.Uint64
}

// Open starts a session on engine. The session owns the engine from here
// on and closes it in Close.
func Open(engine abi.Engine, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	info := engine.Info()
	if info.Ownership != abi.EngineAllocated && info.Ownership != abi.CallerAllocated {
		return nil, fmt.Errorf("jigsaw: engine %q declares no ownership convention", info.Name)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !info.ConcurrentSafe {
		o.workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		engine: engine,
		info:   info,
		opts:   o,
		log:    o.logger.With("engine", info.Name),
		pool: workers.New(workers.Config{
			Workers:      o.workers,
			QueueDepth:   o.queueDepth,
			LockOSThread: true,
		}),
		ctrl: workers.NewController(workers.Limits{
			MemoryBytes: o.memoryBudget,
			Rate:        o.rate,
			Burst:       o.burst,
		}),
		live:   newRegistry(),
		ctx:    ctx,
		cancel: cancel,
	}
	s.log.Info(ctx, "session opened",
		"ownership", info.Ownership.String(),
		"workers", s.pool.Workers(),
		"memory_budget", o.memoryBudget,
	)
	return s, nil
}

// Info describes the session's engine.
func (s *Session) Info() abi.Info { return s.info }

// Workers returns the number of concurrent native calls the session runs.
func (s *Session) Workers() int { return s.pool.Workers() }

// LiveBuffers returns the number of output handles not yet released. It is
// zero whenever no request is inside the engine or its decoder.
func (s *Session) LiveBuffers() int { return s.live.len() }

// Close stops admission, cancels requests still waiting for a worker,
// waits for running calls to finish and closes the engine. A second Close
// returns ErrSessionClosed.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	s.cancel()
	s.pool.Close()

	if n := s.live.releaseAll(); n > 0 {
		s.log.Error(context.Background(), "output buffers leaked", "count", n)
	}
	err := s.engine.Close()
	s.log.Info(context.Background(), "session closed")
	if err != nil {
		return fmt.Errorf("jigsaw: close engine: %w", err)
	}
	return nil
}

// Submit validates and marshals req, then queues it. Validation errors,
// cancellation of ctx and saturation are reported here, before anything
// reaches the engine. ctx also governs the request while it waits for a
// worker; once the engine has been called it no longer matters.
func (s *Session) Submit(ctx context.Context, req Request) (*Future, error) {
	return s.submit(ctx, req, false)
}

// submit queues req. With wait set it waits for queue space until ctx is
// done or the session closes, instead of failing on a full queue.
func (s *Session) submit(ctx context.Context, req Request, wait bool) (*Future, error) {
	// Close cancels s.ctx before draining, so a rejected Submit means
	// queued requests are already being cancelled.
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, mesherr.Canceled(mesherr.StageQueue, err, "canceled before submission")
	}

	f := newFuture(s.nextID.Add(1))
	cfg, err := config.Build(req.Options)
	if err != nil {
		return nil, err
	}
	in, params, err := marshal(req.Geometry, cfg)
	if err != nil {
		return nil, err
	}
	f.advance(StateBuilding, StateValidated)

	if err := s.ctrl.Admit(); err != nil {
		return nil, mesherr.New(mesherr.StageQueue, mesherr.KindResourceExhausted).
			Detail("admission rate exceeded").Cause(err).Build()
	}
	capacity := s.opts.estimate(&in, &params)
	footprint := in.Footprint() + capacity.Footprint(in.Dims)
	if err := s.ctrl.AcquireMemory(footprint); err != nil {
		return nil, mesherr.New(mesherr.StageQueue, mesherr.KindResourceExhausted).
			Detail("request needs %d bytes, budget %d, in use %d",
				footprint, s.ctrl.MemoryLimit(), s.ctrl.MemoryUsage()).
			Cause(err).Build()
	}

	job := &job{
		future:    f,
		ctx:       ctx,
		call:      abi.Call{Input: in, Params: params},
		capacity:  capacity,
		footprint: footprint,
		quality:   cfg.Quality(),
	}
	if err := s.enqueue(ctx, func() { s.run(job) }, wait); err != nil {
		s.ctrl.ReleaseMemory(footprint)
		return nil, err
	}
	job.setStop(context.AfterFunc(ctx, func() {
		f.complete(StateValidated, StateCanceled, nil,
			mesherr.Canceled(mesherr.StageQueue, ctx.Err(), "canceled before invocation"))
	}))
	s.log.Debug(ctx, "request queued",
		"request", f.ID(),
		"vertices", in.VertexCount(),
		logging.Elided("coords", len(in.Coords)),
	)
	return f, nil
}

func (s *Session) enqueue(ctx context.Context, task func(), wait bool) error {
	var err error
	if wait {
		qctx, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(s.ctx, cancel)
		err = s.pool.Submit(qctx, task)
		stop()
		cancel()
	} else {
		err = s.pool.TrySubmit(task)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, workers.ErrClosed), s.ctx.Err() != nil:
		return ErrSessionClosed
	case ctx.Err() != nil:
		return mesherr.Canceled(mesherr.StageQueue, ctx.Err(), "canceled while waiting for a worker")
	default:
		return mesherr.New(mesherr.StageQueue, mesherr.KindResourceExhausted).
			Detail("%d calls running, %d queued", s.pool.Busy(), s.pool.Queued()).
			Cause(err).Build()
	}
}

// Generate submits req and waits for its outcome.
func (s *Session) Generate(ctx context.Context, req Request) (*Result, error) {
	f, err := s.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return f.Wait(ctx)
}
