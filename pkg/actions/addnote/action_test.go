package addnote

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

func execute(t *testing.T, store *crm.MemoryStore, ectx *models.ExecutionContext, config map[string]any) protocol.Result {
	t.Helper()

	factory := NewFactory(store, template.NewResolver(store))
	action, err := factory.Create(&models.Step{
		Type:         models.StepTypeAction,
		ActionType:   models.ActionAddNote,
		ActionConfig: config,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	result, err := action.Execute(t.Context(), ectx, logger)
	require.NoError(t, err)

	return result
}

func TestAddNote_AppendsResolvedNoteAndHistory(t *testing.T) {
	store := crm.NewMemoryStore()
	store.PutDeal(&models.Deal{ID: "deal-1", TenantID: "tenant-1", Name: "Acme Renewal"})

	ectx := &models.ExecutionContext{
		EventType: "DEAL_CREATED",
		TenantID:  "tenant-1",
		Deal:      &models.Deal{ID: "deal-1", TenantID: "tenant-1", Name: "Acme Renewal"},
	}

	execute(t, store, ectx, map[string]any{"note_content": "Reviewing {{deal.name}}"})

	deal, err := store.GetDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	require.Len(t, deal.Notes, 1)
	assert.Equal(t, "Reviewing Acme Renewal", deal.Notes[0].Content)
	assert.NotEmpty(t, deal.Notes[0].ID)

	require.Len(t, deal.History, 1)
	assert.Equal(t, "Note Added via Automation", deal.History[0].Action)
	assert.Equal(t, "Reviewing Acme Renewal", deal.History[0].Details["content"])
}

func TestAddNote_SkipsWhenDealDisappeared(t *testing.T) {
	store := crm.NewMemoryStore()

	ectx := &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "gone", TenantID: "tenant-1"},
	}

	result := execute(t, store, ectx, map[string]any{"note_content": "hello"})
	assert.Equal(t, protocol.SignalContinue, result.Signal)
}

func TestAddNote_SkipsOnMissingConfig(t *testing.T) {
	store := crm.NewMemoryStore()
	store.PutDeal(&models.Deal{ID: "deal-1", TenantID: "tenant-1"})

	ectx := &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "deal-1", TenantID: "tenant-1"},
	}

	execute(t, store, ectx, map[string]any{})

	deal, err := store.GetDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	assert.Empty(t, deal.Notes)
}
