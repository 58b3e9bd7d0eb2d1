// Package lock serializes automation runs per deal so two events for the
// same deal never interleave their side effects.
package lock

import (
	"context"
	"time"
)

// DealLocker acquires a short-lived exclusive lock on a tenant/deal pair.
// Acquire blocks until the lock is held or the context is done. The
// returned release func is idempotent.
type DealLocker interface {
	Acquire(ctx context.Context, tenantID, dealID string) (release func(), err error)
}

const (
	lockTTL       = 30 * time.Second
	retryInterval = 50 * time.Millisecond
)

func lockKey(tenantID, dealID string) string {
	return "vendaflow:deal-lock:" + tenantID + ":" + dealID
}
