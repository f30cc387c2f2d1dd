package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/enginetest"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/retry"
)

var fast = retry.Options{InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

type scripted struct {
	errs  []error
	calls int
}

func (s *scripted) Generate(context.Context, jigsaw.Request) (*jigsaw.Result, error) {
	s.calls++
	if len(s.errs) == 0 {
		return &jigsaw.Result{}, nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return nil, err
}

func exhausted() error {
	return mesherr.ResourceExhausted(mesherr.StageQueue, "queue full")
}

func TestRetriesExhaustion(t *testing.T) {
	g := &scripted{errs: []error{exhausted(), exhausted()}}
	var waits int
	opts := fast
	opts.Notify = func(err error, _ time.Duration) {
		waits++
		assert.ErrorIs(t, err, mesherr.ErrResourceExhausted)
	}

	res, err := retry.Generate(t.Context(), g, jigsaw.Request{}, opts)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 3, g.calls)
	assert.Equal(t, 2, waits)
}

func TestDoesNotRetryOtherKinds(t *testing.T) {
	for _, err := range []error{
		mesherr.MalformedGeometry(mesherr.StageGeometry, "bad"),
		mesherr.New(mesherr.StageInvoke, mesherr.KindNativeFailure).Code(6).Build(),
		mesherr.CorruptOutput("bad"),
		errors.New("plain"),
	} {
		g := &scripted{errs: []error{err}}
		_, got := retry.Generate(t.Context(), g, jigsaw.Request{}, fast)
		assert.Equal(t, 1, g.calls, "%v", err)
		assert.Error(t, got)
	}
}

func TestMaxRetries(t *testing.T) {
	g := &scripted{errs: []error{exhausted(), exhausted(), exhausted(), exhausted()}}
	opts := fast
	opts.MaxRetries = 2

	_, err := retry.Generate(t.Context(), g, jigsaw.Request{}, opts)
	assert.ErrorIs(t, err, mesherr.ErrResourceExhausted)
	assert.Equal(t, 3, g.calls)
}

func TestCanceledWhileBackingOff(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	g := &scripted{errs: []error{exhausted(), exhausted(), exhausted()}}
	opts := retry.Options{InitialInterval: time.Hour, MaxInterval: time.Hour}
	opts.Notify = func(error, time.Duration) { cancel() }

	_, err := retry.Generate(ctx, g, jigsaw.Request{}, opts)
	assert.ErrorIs(t, err, mesherr.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, g.calls)
}

func TestRetriesEngineOutOfMemory(t *testing.T) {
	eng := enginetest.New()
	s, err := jigsaw.Open(eng)
	require.NoError(t, err)
	defer s.Close()

	eng.Script(
		enginetest.Behavior{Status: enginetest.StatusOutOfMemory},
		enginetest.Behavior{Status: enginetest.StatusOutOfMemory},
	)
	sq, err := geometry.New(geometry.Input{Dims: 2, Vertices: [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}})
	require.NoError(t, err)

	res, err := retry.Generate(t.Context(), s, jigsaw.Request{Geometry: sq}, fast)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Mesh().VertexCount(), 4)
	assert.Equal(t, 3, eng.Calls())
	assert.Equal(t, 0, eng.Live())
}

func TestMaxElapsedTime(t *testing.T) {
	errs := make([]error, 10000)
	for i := range errs {
		errs[i] = exhausted()
	}
	g := &scripted{errs: errs}
	opts := fast
	opts.MaxElapsedTime = 20 * time.Millisecond

	_, err := retry.Generate(t.Context(), g, jigsaw.Request{}, opts)
	assert.ErrorIs(t, err, mesherr.ErrResourceExhausted)
	assert.Less(t, g.calls, len(errs))
}
