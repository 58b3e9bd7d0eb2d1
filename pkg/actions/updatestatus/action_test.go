package updatestatus

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

func execute(t *testing.T, store *crm.MemoryStore, ectx *models.ExecutionContext, config map[string]any) protocol.Result {
	t.Helper()

	action, err := NewFactory(store).Create(&models.Step{
		Type:         models.StepTypeAction,
		ActionType:   models.ActionUpdateDealStatus,
		ActionConfig: config,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	result, err := action.Execute(t.Context(), ectx, logger)
	require.NoError(t, err)

	return result
}

func TestUpdateStatus_TransitionsAndRecordsHistory(t *testing.T) {
	store := crm.NewMemoryStore()
	store.PutDeal(&models.Deal{ID: "deal-1", TenantID: "tenant-1", Status: models.DealStatusOpen})

	ectx := &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "deal-1", TenantID: "tenant-1"},
	}

	execute(t, store, ectx, map[string]any{"status": "WON"})

	deal, err := store.GetDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusWon, deal.Status)

	require.Len(t, deal.History, 1)
	assert.Equal(t, "Status Updated via Automation", deal.History[0].Action)
	assert.Equal(t, "OPEN", deal.History[0].Details["from"])
	assert.Equal(t, "WON", deal.History[0].Details["to"])
}

func TestUpdateStatus_SkipsWhenDealDisappeared(t *testing.T) {
	store := crm.NewMemoryStore()

	ectx := &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "gone", TenantID: "tenant-1"},
	}

	result := execute(t, store, ectx, map[string]any{"status": "LOST"})
	assert.Equal(t, protocol.SignalContinue, result.Signal)
}

func TestUpdateStatus_SkipsOnMissingConfig(t *testing.T) {
	store := crm.NewMemoryStore()
	store.PutDeal(&models.Deal{ID: "deal-1", TenantID: "tenant-1", Status: models.DealStatusOpen})

	ectx := &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "deal-1", TenantID: "tenant-1"},
	}

	execute(t, store, ectx, map[string]any{})

	deal, err := store.GetDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusOpen, deal.Status)
	assert.Empty(t, deal.History)
}
