// Package movestage implements the MOVE_DEAL_TO_STAGE automation action.
package movestage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

// Action moves the triggering deal to another stage, recording the stage
// names (not IDs) in the history entry.
type Action struct {
	step  *models.Step
	store crm.EntityStore
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	stageID, ok := a.step.ConfigString("stage_id")
	if !ok || ectx.Deal == nil {
		logger.Warn("MOVE_DEAL_TO_STAGE step missing stage or deal, skipping")

		return protocol.Continue(), nil
	}

	deal, err := a.store.GetDeal(ctx, ectx.TenantID, ectx.Deal.ID)
	if errors.Is(err, crm.ErrNotFound) {
		logger.Warn("MOVE_DEAL_TO_STAGE deal disappeared, skipping", "deal_id", ectx.Deal.ID)

		return protocol.Continue(), nil
	}

	if err != nil {
		return protocol.Continue(), err
	}

	history := models.NewHistoryEntry("Stage Changed via Automation", map[string]any{
		"from": a.stageName(ctx, ectx.TenantID, deal.StageID),
		"to":   a.stageName(ctx, ectx.TenantID, stageID),
	})

	_, err = a.store.UpdateDeal(ctx, ectx.TenantID, deal.ID, crm.DealPatch{
		StageID:    &stageID,
		AddHistory: &history,
	})
	if errors.Is(err, crm.ErrNotFound) {
		return protocol.Continue(), nil
	}

	return protocol.Continue(), err
}

func (a *Action) stageName(ctx context.Context, tenantID, stageID string) string {
	stage, err := a.store.GetStage(ctx, tenantID, stageID)
	if err != nil || stage == nil {
		return "N/A"
	}

	return stage.Name
}
