// Package crm defines the boundary to the CRM entity store. The CRUD
// surface, schema, and transactions behind it are owned by the host
// application; the engine only consumes this interface.
package crm

import (
	"context"
	"errors"

	"github.com/vendaflow/vendaflow/pkg/models"
)

// ErrNotFound indicates a referenced entity does not exist. Actions treat
// it as a lookup miss and skip, never as a run failure.
var ErrNotFound = errors.New("entity not found")

// DealPatch is a partial deal update. Nil fields are left untouched.
// AddNote appends to the deal's notes; AddHistory prepends to its history,
// newest first.
type DealPatch struct {
	Status     *models.DealStatus
	StageID    *string
	AddNote    *models.DealNote
	AddHistory *models.HistoryEntry
}

// EntityStore is the engine's view of the CRM data layer. All reads and
// writes are tenant scoped; implementations must treat tenantID as a hard
// isolation boundary.
type EntityStore interface {
	GetDeal(ctx context.Context, tenantID, id string) (*models.Deal, error)
	CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	UpdateDeal(ctx context.Context, tenantID, id string, patch DealPatch) (*models.Deal, error)

	GetStage(ctx context.Context, tenantID, id string) (*models.Stage, error)
	GetPipeline(ctx context.Context, tenantID, id string) (*models.Pipeline, error)
	GetContact(ctx context.Context, tenantID, id string) (*models.Contact, error)
	GetTask(ctx context.Context, tenantID, id string) (*models.Task, error)

	CustomFieldDefinitions(ctx context.Context, tenantID string) ([]*models.CustomFieldDefinition, error)
	ContactCustomFieldDefinitions(ctx context.Context, tenantID string) ([]*models.CustomFieldDefinition, error)

	GetEmailTemplate(ctx context.Context, tenantID, id string) (*models.EmailTemplate, error)
	TenantSettings(ctx context.Context, tenantID string) (*models.TenantSettings, error)

	CreateTask(ctx context.Context, task *models.Task) error
	CreateCalendarNote(ctx context.Context, note *models.CalendarNote) error
}
