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

// ContinuationRepository stores suspended automation runs. Take uses
// DELETE ... RETURNING so consuming a continuation is a single atomic
// statement; the losing side of a race gets ErrContinuationNotFound.
type ContinuationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewContinuationRepository(db *sql.DB, logger *slog.Logger) *ContinuationRepository {
	return &ContinuationRepository{db: db, logger: logger}
}

const continuationColumns = "id, tenant_id, deal_id, automation_id, remaining_steps, execute_at, condition, created_at"

func (cr *ContinuationRepository) Save(ctx context.Context, continuation *models.Continuation) error {
	remainingSteps, err := json.Marshal(continuation.RemainingSteps)
	if err != nil {
		return fmt.Errorf("failed to marshal remaining steps: %w", err)
	}

	var condition []byte
	if continuation.Condition != nil {
		condition, err = json.Marshal(continuation.Condition)
		if err != nil {
			return fmt.Errorf("failed to marshal condition: %w", err)
		}
	}

	query := `
		INSERT INTO continuations (id, tenant_id, deal_id, automation_id, remaining_steps, execute_at, condition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = cr.db.ExecContext(ctx, query,
		continuation.ID,
		continuation.TenantID,
		continuation.DealID,
		continuation.AutomationID,
		remainingSteps,
		continuation.ExecuteAt,
		condition,
		continuation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save continuation %s: %w", continuation.ID, err)
	}

	return nil
}

func (cr *ContinuationRepository) ListForDeal(ctx context.Context, tenantID, dealID string) ([]*models.Continuation, error) {
	query := "SELECT " + continuationColumns + ` FROM continuations
		WHERE tenant_id = $1 AND deal_id = $2 ORDER BY created_at, id`

	return cr.query(ctx, query, tenantID, dealID)
}

func (cr *ContinuationRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Continuation, error) {
	query := "SELECT " + continuationColumns + ` FROM continuations
		WHERE execute_at IS NOT NULL AND execute_at <= $1 ORDER BY execute_at, id`

	return cr.query(ctx, query, now)
}

func (cr *ContinuationRepository) Take(ctx context.Context, id string) (*models.Continuation, error) {
	query := "DELETE FROM continuations WHERE id = $1 RETURNING " + continuationColumns

	continuation, err := scanContinuation(cr.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrContinuationNotFound
	}

	return continuation, err
}

func (cr *ContinuationRepository) DeleteByAutomation(ctx context.Context, tenantID, automationID string) error {
	_, err := cr.db.ExecContext(ctx,
		"DELETE FROM continuations WHERE tenant_id = $1 AND automation_id = $2", tenantID, automationID)
	if err != nil {
		return fmt.Errorf("failed to delete continuations for automation %s: %w", automationID, err)
	}

	return nil
}

func (cr *ContinuationRepository) query(ctx context.Context, query string, args ...any) ([]*models.Continuation, error) {
	rows, err := cr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query continuations: %w", err)
	}
	defer rows.Close()

	continuations := make([]*models.Continuation, 0)

	for rows.Next() {
		continuation, err := scanContinuation(rows)
		if err != nil {
			return nil, err
		}

		continuations = append(continuations, continuation)
	}

	return continuations, rows.Err()
}

func scanContinuation(row rowScanner) (*models.Continuation, error) {
	var (
		continuation   models.Continuation
		remainingSteps []byte
		executeAt      sql.NullTime
		condition      []byte
	)

	err := row.Scan(
		&continuation.ID,
		&continuation.TenantID,
		&continuation.DealID,
		&continuation.AutomationID,
		&remainingSteps,
		&executeAt,
		&condition,
		&continuation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if executeAt.Valid {
		at := executeAt.Time
		continuation.ExecuteAt = &at
	}

	if len(remainingSteps) > 0 {
		if err := json.Unmarshal(remainingSteps, &continuation.RemainingSteps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal remaining steps for continuation %s: %w", continuation.ID, err)
		}
	}

	if len(condition) > 0 {
		if err := json.Unmarshal(condition, &continuation.Condition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal condition for continuation %s: %w", continuation.ID, err)
		}
	}

	return &continuation, nil
}
