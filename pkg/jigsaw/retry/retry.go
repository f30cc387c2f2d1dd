// Package retry resubmits requests that failed for lack of resources.
//
// Only ResourceExhausted errors are retried: a full queue, an exhausted
// memory budget or admission rate, or an engine status documented as an
// allocation failure. Every other failure repeats for identical input and
// is returned at once.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// Generator produces a mesh for a request. *jigsaw.Session implements it.
type Generator interface {
	Generate(ctx context.Context, req jigsaw.Request) (*jigsaw.Result, error)
}

// Options tunes the exponential backoff. Zero intervals keep the backoff
// package defaults.
type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxElapsedTime bounds the whole retry loop. 0 means no bound; the
	// loop then ends only through MaxRetries or ctx.
	MaxElapsedTime time.Duration

	// MaxRetries caps the number of retries. 0 means no cap.
	MaxRetries uint64

	// Notify is called after each retryable failure with the wait before
	// the next attempt.
	Notify func(err error, wait time.Duration)
}

func (o Options) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if o.InitialInterval > 0 {
		b.InitialInterval = o.InitialInterval
	}
	if o.MaxInterval > 0 {
		b.MaxInterval = o.MaxInterval
	}
	// The package default of 15 minutes would silently stop the loop
	// before the first retry whenever InitialInterval exceeds it.
	b.MaxElapsedTime = o.MaxElapsedTime
	var p backoff.BackOff = b
	if o.MaxRetries > 0 {
		p = backoff.WithMaxRetries(p, o.MaxRetries)
	}
	return backoff.WithContext(p, ctx)
}

// Generate calls g.Generate until it succeeds, fails with an error that is
// not retryable, or the backoff gives up. The last error is returned.
func Generate(ctx context.Context, g Generator, req jigsaw.Request, opts Options) (*jigsaw.Result, error) {
	op := func() (*jigsaw.Result, error) {
		res, err := g.Generate(ctx, req)
		if err != nil && !mesherr.KindOf(err).Retryable() {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}
	res, err := backoff.RetryNotifyWithData(op, opts.policy(ctx), opts.Notify)
	if err != nil {
		var me *mesherr.Error
		if !errors.As(err, &me) && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// The context ended while waiting between attempts.
			return nil, mesherr.Canceled(mesherr.StageQueue, err, "canceled while backing off")
		}
		return nil, err
	}
	return res, nil
}
