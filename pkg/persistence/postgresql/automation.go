package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// AutomationRepository stores automation definitions. Trigger config and
// steps are JSONB columns; the step tree round-trips through the models
// JSON encoding.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

const automationColumns = "id, tenant_id, name, trigger_type, trigger_config, steps, created_at, updated_at"

func (ar *AutomationRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Automation, error) {
	query := "SELECT " + automationColumns + " FROM automations WHERE tenant_id = $1 ORDER BY created_at, id"

	rows, err := ar.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	return automations, rows.Err()
}

func (ar *AutomationRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Automation, error) {
	query := "SELECT " + automationColumns + " FROM automations WHERE tenant_id = $1 AND id = $2"

	automation, err := scanAutomation(ar.db.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrAutomationNotFound
	}

	return automation, err
}

func (ar *AutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	triggerConfig, err := json.Marshal(automation.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	steps, err := json.Marshal(automation.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		INSERT INTO automations (id, tenant_id, name, trigger_type, trigger_config, steps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger_type = EXCLUDED.trigger_type,
			trigger_config = EXCLUDED.trigger_config,
			steps = EXCLUDED.steps,
			updated_at = EXCLUDED.updated_at
	`

	_, err = ar.db.ExecContext(ctx, query,
		automation.ID,
		automation.TenantID,
		automation.Name,
		string(automation.TriggerType),
		triggerConfig,
		steps,
		automation.CreatedAt,
		automation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save automation %s: %w", automation.ID, err)
	}

	return nil
}

// Delete removes the automation. Its continuations go with it through the
// ON DELETE CASCADE on the foreign key.
func (ar *AutomationRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := ar.db.ExecContext(ctx,
		"DELETE FROM automations WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete automation %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrAutomationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAutomation(row rowScanner) (*models.Automation, error) {
	var (
		automation    models.Automation
		triggerType   string
		triggerConfig []byte
		steps         []byte
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&automation.ID,
		&automation.TenantID,
		&automation.Name,
		&triggerType,
		&triggerConfig,
		&steps,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	automation.TriggerType = models.TriggerType(triggerType)
	automation.CreatedAt = createdAt
	automation.UpdatedAt = updatedAt

	if len(triggerConfig) > 0 {
		if err := json.Unmarshal(triggerConfig, &automation.TriggerConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger config for automation %s: %w", automation.ID, err)
		}
	}

	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &automation.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps for automation %s: %w", automation.ID, err)
		}
	}

	return &automation, nil
}
