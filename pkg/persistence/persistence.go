// Package persistence provides the storage abstraction for automation
// definitions and suspended continuations.
package persistence

import (
	"context"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
)

// AutomationRepository stores automation definitions per tenant.
// ListByTenant must return a stable order so trigger matching is
// deterministic.
type AutomationRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Automation, error)
	GetByID(ctx context.Context, tenantID, id string) (*models.Automation, error)
	Save(ctx context.Context, automation *models.Automation) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ContinuationRepository stores suspended automation runs. Take and
// TakeDue are consuming reads: the continuation is deleted atomically with
// its retrieval, so the time sweep and a condition-triggered mutation can
// never both resume the same continuation.
type ContinuationRepository interface {
	Save(ctx context.Context, continuation *models.Continuation) error
	ListForDeal(ctx context.Context, tenantID, dealID string) ([]*models.Continuation, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Continuation, error)
	// Take deletes the continuation and returns it. Returns
	// ErrContinuationNotFound when another consumer got there first.
	Take(ctx context.Context, id string) (*models.Continuation, error)
	DeleteByAutomation(ctx context.Context, tenantID, automationID string) error
}

// Persistence bundles the repositories behind one backend.
type Persistence interface {
	Automations() AutomationRepository
	Continuations() ContinuationRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
