// Package addnote implements the ADD_NOTE automation action.
package addnote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

// Action appends a note to the triggering deal and records a history
// entry with the resolved content.
type Action struct {
	step     *models.Step
	store    crm.EntityStore
	resolver *template.Resolver
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	content, ok := a.step.ConfigString("note_content")
	if !ok || ectx.Deal == nil {
		logger.Warn("ADD_NOTE step missing note content or deal, skipping")

		return protocol.Continue(), nil
	}

	resolvedContent := a.resolver.Resolve(ctx, content, ectx)

	note := models.DealNote{
		ID:        uuid.New().String(),
		Content:   resolvedContent,
		CreatedAt: time.Now().UTC(),
	}
	history := models.NewHistoryEntry("Note Added via Automation", map[string]any{
		"content": resolvedContent,
	})

	_, err := a.store.UpdateDeal(ctx, ectx.TenantID, ectx.Deal.ID, crm.DealPatch{
		AddNote:    &note,
		AddHistory: &history,
	})
	if errors.Is(err, crm.ErrNotFound) {
		logger.Warn("ADD_NOTE deal disappeared, skipping", "deal_id", ectx.Deal.ID)

		return protocol.Continue(), nil
	}

	return protocol.Continue(), err
}
