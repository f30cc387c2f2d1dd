package workers

import (
	"errors"
	"testing"

	"golang.org/x/time/rate"
)

func TestMemoryBudget(t *testing.T) {
	c := NewController(Limits{MemoryBytes: 100})

	if err := c.AcquireMemory(60); err != nil {
		t.Fatalf("AcquireMemory(60): %v", err)
	}
	if err := c.AcquireMemory(60); !errors.Is(err, ErrMemoryLimitExceeded) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
	if got := c.MemoryUsage(); got != 60 {
		t.Fatalf("usage %d, want 60", got)
	}
	c.ReleaseMemory(60)
	if err := c.AcquireMemory(100); err != nil {
		t.Fatalf("AcquireMemory(100) after release: %v", err)
	}
	if err := c.AcquireMemory(1); !errors.Is(err, ErrMemoryLimitExceeded) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
	if c.MemoryLimit() != 100 {
		t.Fatalf("limit %d", c.MemoryLimit())
	}
}

func TestOversizedRequestNeverFits(t *testing.T) {
	c := NewController(Limits{MemoryBytes: 10})
	if err := c.AcquireMemory(11); !errors.Is(err, ErrMemoryLimitExceeded) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
}

func TestAdmissionRate(t *testing.T) {
	c := NewController(Limits{Rate: rate.Limit(0.001), Burst: 2})
	for i := 0; i < 2; i++ {
		if err := c.Admit(); err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
	}
	if err := c.Admit(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNilControllerAdmitsEverything(t *testing.T) {
	var c *Controller
	if err := c.Admit(); err != nil {
		t.Fatal(err)
	}
	if err := c.AcquireMemory(1 << 40); err != nil {
		t.Fatal(err)
	}
	c.ReleaseMemory(1 << 40)
	if c.MemoryUsage() != 0 || c.MemoryLimit() != 0 {
		t.Fatal("nil controller reports usage")
	}

	unlimited := NewController(Limits{})
	if err := unlimited.AcquireMemory(1 << 40); err != nil {
		t.Fatal(err)
	}
	if unlimited.MemoryUsage() != 1<<40 {
		t.Fatal("unlimited controller still tracks usage")
	}
}
