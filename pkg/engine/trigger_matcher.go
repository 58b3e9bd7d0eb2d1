package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/events"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// TriggerMatcher selects the tenant's automations that fire for a domain
// event. Matching is type equality plus, for parameterized triggers, an
// exact config comparison against the event payload. An automation whose
// config is missing the key its trigger type requires never matches.
type TriggerMatcher struct {
	automations persistence.AutomationRepository
	logger      *slog.Logger
}

func NewTriggerMatcher(automations persistence.AutomationRepository, logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{automations: automations, logger: logger.With("module", "trigger_matcher")}
}

// Match returns the matching automations in the repository's stable order.
func (m *TriggerMatcher) Match(ctx context.Context, event *events.DomainEvent) ([]*models.Automation, error) {
	automations, err := m.automations.ListByTenant(ctx, event.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations for tenant %s: %w", event.TenantID, err)
	}

	matched := make([]*models.Automation, 0)

	for _, automation := range automations {
		if automation.TriggerType != event.TriggerType() {
			continue
		}

		if m.configMatches(automation, event) {
			matched = append(matched, automation)
		}
	}

	return matched, nil
}

func (m *TriggerMatcher) configMatches(automation *models.Automation, event *events.DomainEvent) bool {
	switch automation.TriggerType {
	case models.TriggerDealStageChanged:
		stageID, ok := automation.TriggerConfigString("stage_id")
		if !ok {
			m.logger.Warn("Stage trigger without stage_id never matches", "automation_id", automation.ID)

			return false
		}

		return stageID == event.NewStageID
	case models.TriggerDealStatusUpdated:
		status, ok := automation.TriggerConfigString("status")
		if !ok {
			m.logger.Warn("Status trigger without status never matches", "automation_id", automation.ID)

			return false
		}

		return status == event.NewStatus
	case models.TriggerDealEnteredPipeline:
		pipelineID, ok := automation.TriggerConfigString("pipeline_id")
		if !ok {
			m.logger.Warn("Pipeline trigger without pipeline_id never matches", "automation_id", automation.ID)

			return false
		}

		return pipelineID == event.PipelineID
	default:
		// DEAL_CREATED, NOTE_ADDED_TO_DEAL, TASK_CREATED and TASK_COMPLETED
		// take no config.
		return true
	}
}
