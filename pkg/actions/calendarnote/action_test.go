package calendarnote

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

func executeWith(t *testing.T, store *crm.MemoryStore, config map[string]any, ectx *models.ExecutionContext) protocol.Result {
	t.Helper()

	action, err := NewFactory(store, template.NewResolver(store)).Create(&models.Step{
		Type:         models.StepTypeAction,
		ActionType:   models.ActionCreateCalendarNote,
		ActionConfig: config,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	result, err := action.Execute(t.Context(), ectx, logger)
	require.NoError(t, err)

	return result
}

func execute(t *testing.T, store *crm.MemoryStore, config map[string]any) protocol.Result {
	t.Helper()

	return executeWith(t, store, config, &models.ExecutionContext{
		TenantID: "tenant-1",
		Deal:     &models.Deal{ID: "deal-1", TenantID: "tenant-1", Name: "Acme Renewal"},
	})
}

func TestCalendarNote_CreatesDatedNote(t *testing.T) {
	store := crm.NewMemoryStore()

	execute(t, store, map[string]any{
		"note_title":            "Review {{deal.name}}",
		"note_date_offset_days": float64(7),
		"calendar_note_content": "Check contract status",
	})

	notes := store.CalendarNotes("tenant-1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Review Acme Renewal", notes[0].Title)
	assert.Equal(t, "Check contract status", notes[0].Content)
	assert.Equal(t, models.FutureDate(7), notes[0].Date)
	assert.Equal(t, "deal-1", notes[0].DealID)
}

func TestCalendarNote_ContentIsOptional(t *testing.T) {
	store := crm.NewMemoryStore()

	execute(t, store, map[string]any{
		"note_title":            "Kickoff",
		"note_date_offset_days": float64(1),
	})

	notes := store.CalendarNotes("tenant-1")
	require.Len(t, notes, 1)
	assert.Empty(t, notes[0].Content)
}

func TestCalendarNote_TaskContextCreatesUnlinkedNote(t *testing.T) {
	store := crm.NewMemoryStore()

	executeWith(t, store, map[string]any{
		"note_title":            "Follow up on {{task.title}}",
		"note_date_offset_days": float64(3),
	}, &models.ExecutionContext{
		TenantID: "tenant-1",
		Task:     &models.Task{ID: "task-1", TenantID: "tenant-1", Title: "Send proposal"},
	})

	notes := store.CalendarNotes("tenant-1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Follow up on Send proposal", notes[0].Title)
	assert.Empty(t, notes[0].DealID)
}

func TestCalendarNote_SkipsWithoutDateOffset(t *testing.T) {
	store := crm.NewMemoryStore()

	result := execute(t, store, map[string]any{"note_title": "Kickoff"})

	assert.Equal(t, protocol.SignalContinue, result.Signal)
	assert.Empty(t, store.CalendarNotes("tenant-1"))
}
