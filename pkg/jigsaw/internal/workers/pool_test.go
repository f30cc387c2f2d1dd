package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTasks(t *testing.T) {
	pool := New(Config{Workers: 4})
	defer pool.Close()

	const n = 100
	var ran atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := pool.Submit(context.Background(), func() {
			defer wg.Done()
			ran.Add(1)
		}); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}
	wg.Wait()
	if got := ran.Load(); got != n {
		t.Fatalf("ran %d tasks, want %d", got, n)
	}
}

func TestPoolDefaults(t *testing.T) {
	pool := New(Config{})
	defer pool.Close()
	if pool.Workers() <= 0 {
		t.Fatalf("expected positive worker count, got %d", pool.Workers())
	}
	if cap(pool.workCh) != 2*pool.Workers() {
		t.Fatalf("queue depth %d, want %d", cap(pool.workCh), 2*pool.Workers())
	}
}

func TestTrySubmitSaturates(t *testing.T) {
	pool := New(Config{Workers: 1, QueueDepth: 1})
	defer pool.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.TrySubmit(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("first TrySubmit: %v", err)
	}
	<-started

	if err := pool.TrySubmit(func() {}); err != nil {
		t.Fatalf("queued TrySubmit: %v", err)
	}
	if err := pool.TrySubmit(func() {}); !errors.Is(err, ErrSaturated) {
		t.Fatalf("expected ErrSaturated, got %v", err)
	}
	if pool.Busy() != 1 || pool.Queued() != 1 {
		t.Fatalf("busy=%d queued=%d, want 1 and 1", pool.Busy(), pool.Queued())
	}
	close(release)
}

func TestSubmitHonoursContext(t *testing.T) {
	pool := New(Config{Workers: 1, QueueDepth: -1})
	defer pool.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Submit(context.Background(), func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := pool.Submit(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	close(release)
}

func TestCloseDrains(t *testing.T) {
	pool := New(Config{Workers: 2, LockOSThread: true})

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		if err := pool.Submit(context.Background(), func() {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}
	pool.Close()
	if got := done.Load(); got != 5 {
		t.Fatalf("Close returned with %d of 5 tasks done", got)
	}

	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
	if err := pool.TrySubmit(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from TrySubmit, got %v", err)
	}
	pool.Close()
}
