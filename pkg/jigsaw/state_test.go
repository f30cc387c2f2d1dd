package jigsaw

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

func TestStateTransitions(t *testing.T) {
	allowed := map[[2]State]bool{
		{StateBuilding, StateValidated}:     true,
		{StateValidated, StateInvoking}:     true,
		{StateValidated, StateCanceled}:     true,
		{StateInvoking, StateSucceeded}:     true,
		{StateInvoking, StateNativeFailed}:  true,
		{StateInvoking, StateCorruptOutput}: true,
	}
	all := []State{StateBuilding, StateValidated, StateInvoking, StateSucceeded,
		StateNativeFailed, StateCorruptOutput, StateCanceled}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]State{from, to}], canTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateSucceeded, StateNativeFailed, StateCorruptOutput, StateCanceled} {
		assert.True(t, s.Terminal(), s.String())
	}
	for _, s := range []State{StateBuilding, StateValidated, StateInvoking} {
		assert.False(t, s.Terminal(), s.String())
	}
	assert.Equal(t, "state(42)", State(42).String())
}

func TestMustTransitionPanics(t *testing.T) {
	assert.Panics(t, func() { mustTransition(StateSucceeded, StateInvoking) })
	assert.Panics(t, func() { mustTransition(StateInvoking, StateCanceled) })
	assert.NotPanics(t, func() { mustTransition(StateValidated, StateCanceled) })
}

func TestFutureCompletesOnce(t *testing.T) {
	f := newFuture(7)
	assert.Equal(t, uint64(7), f.ID())
	require.True(t, f.advance(StateBuilding, StateValidated))
	require.True(t, f.advance(StateValidated, StateInvoking))

	res := &Result{}
	assert.True(t, f.complete(StateInvoking, StateSucceeded, res, nil))
	assert.False(t, f.complete(StateInvoking, StateNativeFailed, nil, errors.New("late")))

	select {
	case <-f.Done():
	default:
		t.Fatal("done not closed")
	}
	got, err := f.Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, res, got)
	assert.False(t, f.Cancel())
	assert.False(t, f.isAbandoned(), "cancel after completion keeps the outcome")

	got, err = f.Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, res, got)
}

func TestFutureTerminalStateIsNeverAbandoned(t *testing.T) {
	f := newFuture(1)
	// A terminal state whose outcome is not yet visible must still win
	// over a late Cancel.
	f.state.Store(uint32(StateSucceeded))
	assert.False(t, f.abandon(errors.New("late")))
	assert.False(t, f.isAbandoned())
}

func TestFutureCancelRacingCompletion(t *testing.T) {
	for i := 0; i < 500; i++ {
		f := newFuture(uint64(i))
		f.advance(StateBuilding, StateValidated)
		f.advance(StateValidated, StateInvoking)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.complete(StateInvoking, StateSucceeded, &Result{}, nil)
		}()
		go func() {
			defer wg.Done()
			f.Cancel()
		}()
		wg.Wait()

		res, err := f.Wait(t.Context())
		if f.isAbandoned() {
			require.ErrorIs(t, err, mesherr.ErrCanceled)
			require.Nil(t, res)
		} else {
			require.NoError(t, err)
			require.NotNil(t, res)
		}
	}
}

func TestFutureCancelBeforeInvocation(t *testing.T) {
	f := newFuture(1)
	f.advance(StateBuilding, StateValidated)

	assert.True(t, f.Cancel())
	assert.Equal(t, StateCanceled, f.State())
	assert.False(t, f.advance(StateValidated, StateInvoking), "a worker loses the race once cancelled")

	_, err := f.Wait(t.Context())
	assert.ErrorIs(t, err, &mesherr.Error{Kind: mesherr.KindCanceled, Stage: mesherr.StageQueue})
}

func TestFutureAbandonAfterInvocation(t *testing.T) {
	f := newFuture(1)
	f.advance(StateBuilding, StateValidated)
	f.advance(StateValidated, StateInvoking)

	assert.False(t, f.Cancel())
	assert.True(t, f.isAbandoned())
	f.complete(StateInvoking, StateSucceeded, &Result{}, nil)

	res, err := f.Wait(t.Context())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, &mesherr.Error{Kind: mesherr.KindCanceled, Stage: mesherr.StageInvoke})
}
