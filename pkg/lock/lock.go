package lock

import (
	"context"
	"time"
)

// Locker is a lease on a named resource. The booking service holds a per-car
// lease across its conflict check and insert so concurrent requests for the
// same car serialize.
type Locker interface {
	// Acquire attempts to take the lease. Returns false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release gives the lease back. Releasing an expired or unheld lease is
	// not an error.
	Release(ctx context.Context, key string) error
}
