package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/vendaflow/pkg/events"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence/file"
)

func seedAutomation(t *testing.T, repo *file.AutomationRepository, automation *models.Automation) {
	t.Helper()

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = time.Now().UTC()
	}

	require.NoError(t, repo.Save(t.Context(), automation))
}

func TestTriggerMatcher_StageChanged(t *testing.T) {
	repo := file.NewAutomationRepository(t.TempDir())
	matcher := NewTriggerMatcher(repo, testLogger())

	seedAutomation(t, repo, &models.Automation{
		ID:            "auto-stage-s",
		TenantID:      "tenant-1",
		Name:          "On stage S",
		TriggerType:   models.TriggerDealStageChanged,
		TriggerConfig: map[string]any{"stage_id": "stage-s"},
	})
	seedAutomation(t, repo, &models.Automation{
		ID:            "auto-stage-other",
		TenantID:      "tenant-1",
		Name:          "On another stage",
		TriggerType:   models.TriggerDealStageChanged,
		TriggerConfig: map[string]any{"stage_id": "stage-x"},
	})
	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-created",
		TenantID:    "tenant-1",
		Name:        "On deal created",
		TriggerType: models.TriggerDealCreated,
	})

	matched, err := matcher.Match(t.Context(), &events.DomainEvent{
		Type:       events.DealStageChangedEvent,
		TenantID:   "tenant-1",
		DealID:     "deal-1",
		NewStageID: "stage-s",
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "auto-stage-s", matched[0].ID)
}

func TestTriggerMatcher_MalformedConfigNeverMatches(t *testing.T) {
	repo := file.NewAutomationRepository(t.TempDir())
	matcher := NewTriggerMatcher(repo, testLogger())

	// Stage trigger with no config at all.
	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-broken",
		TenantID:    "tenant-1",
		Name:        "Broken stage trigger",
		TriggerType: models.TriggerDealStageChanged,
	})
	// Status trigger with a non-string status.
	seedAutomation(t, repo, &models.Automation{
		ID:            "auto-broken-status",
		TenantID:      "tenant-1",
		Name:          "Broken status trigger",
		TriggerType:   models.TriggerDealStatusUpdated,
		TriggerConfig: map[string]any{"status": 42},
	})

	matched, err := matcher.Match(t.Context(), &events.DomainEvent{
		Type:       events.DealStageChangedEvent,
		TenantID:   "tenant-1",
		NewStageID: "stage-s",
	})
	require.NoError(t, err)
	assert.Empty(t, matched)

	matched, err = matcher.Match(t.Context(), &events.DomainEvent{
		Type:      events.DealStatusUpdatedEvent,
		TenantID:  "tenant-1",
		NewStatus: "WON",
	})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestTriggerMatcher_UnparameterizedTriggers(t *testing.T) {
	repo := file.NewAutomationRepository(t.TempDir())
	matcher := NewTriggerMatcher(repo, testLogger())

	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-task",
		TenantID:    "tenant-1",
		Name:        "On task completed",
		TriggerType: models.TriggerTaskCompleted,
	})

	matched, err := matcher.Match(t.Context(), &events.DomainEvent{
		Type:     events.TaskCompletedEvent,
		TenantID: "tenant-1",
		TaskID:   "task-1",
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "auto-task", matched[0].ID)
}

func TestTriggerMatcher_TenantIsolation(t *testing.T) {
	repo := file.NewAutomationRepository(t.TempDir())
	matcher := NewTriggerMatcher(repo, testLogger())

	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-other-tenant",
		TenantID:    "tenant-2",
		Name:        "Another tenant's automation",
		TriggerType: models.TriggerDealCreated,
	})

	matched, err := matcher.Match(t.Context(), &events.DomainEvent{
		Type:     events.DealCreatedEvent,
		TenantID: "tenant-1",
		DealID:   "deal-1",
	})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestTriggerMatcher_StableOrder(t *testing.T) {
	repo := file.NewAutomationRepository(t.TempDir())
	matcher := NewTriggerMatcher(repo, testLogger())

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-b",
		TenantID:    "tenant-1",
		Name:        "Second created",
		TriggerType: models.TriggerDealCreated,
		CreatedAt:   base.Add(time.Hour),
	})
	seedAutomation(t, repo, &models.Automation{
		ID:          "auto-a",
		TenantID:    "tenant-1",
		Name:        "First created",
		TriggerType: models.TriggerDealCreated,
		CreatedAt:   base,
	})

	matched, err := matcher.Match(t.Context(), &events.DomainEvent{
		Type:     events.DealCreatedEvent,
		TenantID: "tenant-1",
		DealID:   "deal-1",
	})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "auto-a", matched[0].ID)
	assert.Equal(t, "auto-b", matched[1].ID)
}
