package lock

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLocker_ExclusiveWhileHeld(t *testing.T) {
	t.Parallel()

	locker := NewMemoryLocker()
	ctx := context.Background()

	acquired, err := locker.Acquire(ctx, "car:1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("first acquire must succeed, got %v %v", acquired, err)
	}

	acquired, err = locker.Acquire(ctx, "car:1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Fatal("held lease must not be acquirable")
	}

	// A different key is independent.
	acquired, err = locker.Acquire(ctx, "car:2", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("other key must acquire, got %v %v", acquired, err)
	}
}

func TestMemoryLocker_ReleaseFreesLease(t *testing.T) {
	t.Parallel()

	locker := NewMemoryLocker()
	ctx := context.Background()

	if _, err := locker.Acquire(ctx, "car:1", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := locker.Release(ctx, "car:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired, err := locker.Acquire(ctx, "car:1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("released lease must be acquirable, got %v %v", acquired, err)
	}

	// Releasing an unheld lease is not an error.
	if err := locker.Release(ctx, "car:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := locker.Release(ctx, "never-held"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryLocker_ExpiredLeaseReclaimed(t *testing.T) {
	t.Parallel()

	locker := NewMemoryLocker()
	ctx := context.Background()

	if _, err := locker.Acquire(ctx, "car:1", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	acquired, err := locker.Acquire(ctx, "car:1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("expired lease must be reclaimable, got %v %v", acquired, err)
	}
}
