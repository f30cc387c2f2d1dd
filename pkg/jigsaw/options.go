package jigsaw

import (
	"golang.org/x/time/rate"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/abi"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/logging"
)

// CapacityEstimator bounds the output of one call. Sessions use it to
// reserve memory budget and, for CallerAllocated engines, to size the
// regions handed to the engine.
type CapacityEstimator func(in *abi.Input, p *abi.Params) abi.Capacity

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	workers      int
	queueDepth   int
	logger       logging.Logger
	memoryBudget int64
	rate         rate.Limit
	burst        int
	estimate     CapacityEstimator
}

func defaultOptions() sessionOptions {
	return sessionOptions{
		logger:   logging.Discard(),
		estimate: DefaultCapacity,
	}
}

// WithWorkers sets the number of concurrent native calls. The default is
// GOMAXPROCS; engines that are not concurrency-safe always get one.
func WithWorkers(n int) Option {
	return func(o *sessionOptions) { o.workers = n }
}

// WithQueueDepth sets how many validated requests may wait for a worker.
// Submit fails with ResourceExhausted beyond it. The default is twice the
// worker count; a negative depth admits requests only while a worker is
// idle.
func WithQueueDepth(n int) Option {
	return func(o *sessionOptions) { o.queueDepth = n }
}

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *sessionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMemoryBudget caps the estimated bytes of input and output held by
// queued and running requests.
func WithMemoryBudget(bytes int64) Option {
	return func(o *sessionOptions) { o.memoryBudget = bytes }
}

// WithAdmissionRate limits Submit to perSecond requests with bursts of up
// to burst.
func WithAdmissionRate(perSecond float64, burst int) Option {
	return func(o *sessionOptions) {
		o.rate = rate.Limit(perSecond)
		o.burst = burst
	}
}

// WithCapacityEstimator replaces DefaultCapacity.
func WithCapacityEstimator(fn CapacityEstimator) Option {
	return func(o *sessionOptions) {
		if fn != nil {
			o.estimate = fn
		}
	}
}

// DefaultCapacity allows for refinement growing the vertex count eightfold
// plus a fixed allowance for small inputs, and sizes the cell arrays from
// Euler's formula for the resulting vertex count.
func DefaultCapacity(in *abi.Input, _ *abi.Params) abi.Capacity {
	nv := 8*in.VertexCount() + 64
	c := abi.Capacity{
		Vertices:  nv,
		Edges:     len(in.Edges)/2 + 3*nv,
		Triangles: len(in.Triangles)/3 + 2*nv,
	}
	if in.Dims == 3 {
		c.Tetrahedra = len(in.Tetrahedra)/4 + 7*nv
	}
	return c
}
