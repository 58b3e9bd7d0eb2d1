package lock

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process DealLocker for single-worker deployments
// and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, tenantID, dealID string) (func(), error) {
	key := lockKey(tenantID, dealID)

	for {
		l.mu.Lock()
		holder, held := l.locks[key]
		if !held {
			done := make(chan struct{})
			l.locks[key] = done
			l.mu.Unlock()

			var once sync.Once
			release := func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, key)
					l.mu.Unlock()
					close(done)
				})
			}

			return release, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-holder:
		}
	}
}
