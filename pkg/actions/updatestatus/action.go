// Package updatestatus implements the UPDATE_DEAL_STATUS automation action.
package updatestatus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

// Action sets the triggering deal's status and records the transition in
// the deal history.
type Action struct {
	step  *models.Step
	store crm.EntityStore
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	status, ok := a.step.ConfigString("status")
	if !ok || ectx.Deal == nil {
		logger.Warn("UPDATE_DEAL_STATUS step missing status or deal, skipping")

		return protocol.Continue(), nil
	}

	deal, err := a.store.GetDeal(ctx, ectx.TenantID, ectx.Deal.ID)
	if errors.Is(err, crm.ErrNotFound) {
		logger.Warn("UPDATE_DEAL_STATUS deal disappeared, skipping", "deal_id", ectx.Deal.ID)

		return protocol.Continue(), nil
	}

	if err != nil {
		return protocol.Continue(), err
	}

	newStatus := models.DealStatus(status)
	history := models.NewHistoryEntry("Status Updated via Automation", map[string]any{
		"from": string(deal.Status),
		"to":   string(newStatus),
	})

	_, err = a.store.UpdateDeal(ctx, ectx.TenantID, deal.ID, crm.DealPatch{
		Status:     &newStatus,
		AddHistory: &history,
	})
	if errors.Is(err, crm.ErrNotFound) {
		return protocol.Continue(), nil
	}

	return protocol.Continue(), err
}
