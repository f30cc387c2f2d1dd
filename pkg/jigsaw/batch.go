package jigsaw

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one request of a batch. Exactly one field is
// set.
type Outcome struct {
	Result *Result
	Err    error
}

// GenerateAll runs reqs concurrently and returns one outcome per request,
// in order. At most as many requests are in flight as the session has
// workers, and each waits for queue space rather than failing on a full
// queue, so a batch never saturates the queue by itself.
func (s *Session) GenerateAll(ctx context.Context, reqs []Request) []Outcome {
	out := make([]Outcome, len(reqs))
	var g errgroup.Group
	g.SetLimit(s.pool.Workers())
	for i := range reqs {
		g.Go(func() error {
			f, err := s.submit(ctx, reqs[i], true)
			if err != nil {
				out[i] = Outcome{Err: err}
				return nil
			}
			res, err := f.Wait(ctx)
			out[i] = Outcome{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
