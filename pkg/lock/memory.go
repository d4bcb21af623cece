package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker with the same lease semantics as
// the Redis implementation. Suitable for single-instance deployments and
// tests; expired leases are reclaimed on the next Acquire.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.leases[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	l.leases[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, key)
	return nil
}
