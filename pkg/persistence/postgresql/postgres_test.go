//go:build integration
// +build integration

package postgresql

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

var postgresContainer *postgres.PostgresContainer

func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		_ = postgresContainer.Terminate(context.Background())
	}

	os.Exit(code)
}

func setupTestDB(t *testing.T) (*Persistence, context.Context) {
	ctx := context.Background()

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error
		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("vendaflow_test"),
			postgres.WithUsername("vendaflow"),
			postgres.WithPassword("vendaflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	cleanupDB(t, databaseURL)

	return p, ctx
}

func cleanupDB(t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(context.Background(), "TRUNCATE automations, continuations")
	require.NoError(t, err)
}

func testAutomation(id, tenantID string, createdAt time.Time) *models.Automation {
	return &models.Automation{
		ID:          id,
		TenantID:    tenantID,
		Name:        "Welcome flow",
		TriggerType: models.TriggerDealStageChanged,
		TriggerConfig: map[string]any{
			"stage_id": "stage-1",
		},
		Steps: []*models.Step{
			{
				Type:         models.StepTypeAction,
				ActionType:   models.ActionAddNote,
				ActionConfig: map[string]any{"note_content": "hello"},
			},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestAutomationRepository_RoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	automation := testAutomation("auto-1", "tenant-1", now)
	require.NoError(t, p.Automations().Save(ctx, automation))

	got, err := p.Automations().GetByID(ctx, "tenant-1", "auto-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome flow", got.Name)
	assert.Equal(t, models.TriggerDealStageChanged, got.TriggerType)
	assert.Equal(t, "stage-1", got.TriggerConfig["stage_id"])
	require.Len(t, got.Steps, 1)
	assert.Equal(t, models.ActionAddNote, got.Steps[0].ActionType)

	_, err = p.Automations().GetByID(ctx, "tenant-2", "auto-1")
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)
}

func TestAutomationRepository_SaveIsUpsert(t *testing.T) {
	p, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	automation := testAutomation("auto-1", "tenant-1", now)
	require.NoError(t, p.Automations().Save(ctx, automation))

	automation.Name = "Renamed flow"
	require.NoError(t, p.Automations().Save(ctx, automation))

	got, err := p.Automations().GetByID(ctx, "tenant-1", "auto-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed flow", got.Name)

	all, err := p.Automations().ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAutomationRepository_ListOrder(t *testing.T) {
	p, ctx := setupTestDB(t)

	base := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, p.Automations().Save(ctx, testAutomation("auto-b", "tenant-1", base.Add(time.Second))))
	require.NoError(t, p.Automations().Save(ctx, testAutomation("auto-a", "tenant-1", base)))

	automations, err := p.Automations().ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, automations, 2)
	assert.Equal(t, "auto-a", automations[0].ID)
	assert.Equal(t, "auto-b", automations[1].ID)
}

func testContinuation(id, tenantID, dealID, automationID string, executeAt *time.Time) *models.Continuation {
	return &models.Continuation{
		ID:           id,
		TenantID:     tenantID,
		DealID:       dealID,
		AutomationID: automationID,
		RemainingSteps: []*models.Step{
			{Type: models.StepTypeAction, ActionType: models.ActionAddNote, ActionConfig: map[string]any{"note_content": "later"}},
		},
		ExecuteAt: executeAt,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestContinuationRepository_TakeConsumesRow(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-1", "tenant-1", "deal-1", "auto-1", nil)))

	taken, err := p.Continuations().Take(ctx, "cont-1")
	require.NoError(t, err)
	assert.Equal(t, "deal-1", taken.DealID)
	require.Len(t, taken.RemainingSteps, 1)
	assert.Equal(t, "later", taken.RemainingSteps[0].ActionConfig["note_content"])

	_, err = p.Continuations().Take(ctx, "cont-1")
	assert.ErrorIs(t, err, persistence.ErrContinuationNotFound)
}

func TestContinuationRepository_ListDue(t *testing.T) {
	p, ctx := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-past", "tenant-1", "deal-1", "auto-1", &past)))
	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-future", "tenant-1", "deal-1", "auto-1", &future)))
	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-condition", "tenant-1", "deal-1", "auto-1", nil)))

	due, err := p.Continuations().ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "cont-past", due[0].ID)
}

func TestContinuationRepository_DeleteByAutomation(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-1", "tenant-1", "deal-1", "auto-1", nil)))
	require.NoError(t, p.Continuations().Save(ctx, testContinuation("cont-2", "tenant-1", "deal-2", "auto-2", nil)))

	require.NoError(t, p.Continuations().DeleteByAutomation(ctx, "tenant-1", "auto-1"))

	_, err := p.Continuations().Take(ctx, "cont-1")
	assert.ErrorIs(t, err, persistence.ErrContinuationNotFound)

	survivor, err := p.Continuations().Take(ctx, "cont-2")
	require.NoError(t, err)
	assert.Equal(t, "auto-2", survivor.AutomationID)
}
