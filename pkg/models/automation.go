// Package models defines the core domain models for CRM automations.
package models

import "time"

// TriggerType identifies which CRM event starts an automation.
type TriggerType string

const (
	TriggerDealCreated         TriggerType = "DEAL_CREATED"
	TriggerDealStageChanged    TriggerType = "DEAL_STAGE_CHANGED"
	TriggerDealStatusUpdated   TriggerType = "DEAL_STATUS_UPDATED"
	TriggerDealEnteredPipeline TriggerType = "DEAL_ENTERED_PIPELINE"
	TriggerNoteAddedToDeal     TriggerType = "NOTE_ADDED_TO_DEAL"
	TriggerTaskCreated         TriggerType = "TASK_CREATED"
	TriggerTaskCompleted       TriggerType = "TASK_COMPLETED"
)

// Automation is a named trigger plus step tree owned by a tenant.
// TriggerConfig is a variant payload keyed by TriggerType: stage triggers
// carry "stage_id", status triggers "status", pipeline triggers
// "pipeline_id". Other trigger types carry no config.
type Automation struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id"      validate:"required"`
	Name          string         `json:"name"           validate:"required,min=3"`
	TriggerType   TriggerType    `json:"trigger_type"   validate:"required"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
	Steps         []*Step        `json:"steps"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TriggerConfigString returns a string value from the trigger config.
// The second return is false when the key is absent or not a string, which
// callers treat as "this automation never matches" rather than an error.
func (a *Automation) TriggerConfigString(key string) (string, bool) {
	if a.TriggerConfig == nil {
		return "", false
	}

	value, ok := a.TriggerConfig[key].(string)
	if !ok || value == "" {
		return "", false
	}

	return value, true
}
