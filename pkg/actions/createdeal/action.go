// Package createdeal implements the CREATE_DEAL automation action.
package createdeal

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

var dealValueMarker = regexp.MustCompile(`(?i)\{\{deal\.value\}\}`)

// Action creates a new deal in a given pipeline/stage, linked to the same
// contact as the triggering deal.
type Action struct {
	step     *models.Step
	store    crm.EntityStore
	resolver *template.Resolver
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	pipelineID, okPipeline := a.step.ConfigString("pipeline_id")
	stageID, okStage := a.step.ConfigString("stage_id")
	name, okName := a.step.ConfigString("deal_name")
	rawValue, hasValue := a.step.ActionConfig["deal_value"]

	if !okPipeline || !okStage || !okName || !hasValue {
		logger.Warn("CREATE_DEAL step missing required config, skipping",
			"pipeline_id", pipelineID, "stage_id", stageID)

		return protocol.Continue(), nil
	}

	if ectx.Deal == nil || ectx.Deal.ContactID == "" {
		logger.Warn("CREATE_DEAL has no triggering deal contact, skipping")

		return protocol.Continue(), nil
	}

	resolvedName := a.resolver.Resolve(ctx, name, ectx)
	value := a.resolveValue(rawValue, ectx)

	deal := &models.Deal{
		Name:      resolvedName,
		Value:     value,
		ContactID: ectx.Deal.ContactID,
		StageID:   stageID,
		Status:    models.DealStatusOpen,
		History: []models.HistoryEntry{
			models.NewHistoryEntry("Deal Created via Automation", nil),
		},
		Observation: "Created by automation",
		TenantID:    ectx.TenantID,
	}

	created, err := a.store.CreateDeal(ctx, deal)
	if err != nil {
		return protocol.Continue(), err
	}

	logger.Info("Created deal via automation", "deal_id", created.ID, "name", created.Name)

	return protocol.Continue(), nil
}

// resolveValue keeps the legacy contract: a string value containing the
// {{deal.value}} marker copies the triggering deal's value, anything else
// parses numerically with a zero fallback.
func (a *Action) resolveValue(rawValue any, ectx *models.ExecutionContext) float64 {
	switch v := rawValue.(type) {
	case string:
		if dealValueMarker.MatchString(v) {
			if ectx.Deal != nil {
				return ectx.Deal.Value
			}

			return 0
		}

		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}

		return parsed
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
