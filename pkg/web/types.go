// Package web provides HTTP request and response types for the automation API.
package web

import "github.com/vendaflow/vendaflow/pkg/models"

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateAutomationRequest represents the request body for creating a new automation.
type CreateAutomationRequest struct {
	Name          string             `json:"name"           validate:"required,min=3"`
	TriggerType   models.TriggerType `json:"trigger_type"   validate:"required"`
	TriggerConfig map[string]any     `json:"trigger_config,omitempty"`
	Steps         []*models.Step     `json:"steps"`
}

// UpdateAutomationRequest represents the request body for replacing an
// existing automation. The automation builder always submits the full
// definition, so updates are whole-document.
type UpdateAutomationRequest struct {
	Name          string             `json:"name"           validate:"required,min=3"`
	TriggerType   models.TriggerType `json:"trigger_type"   validate:"required"`
	TriggerConfig map[string]any     `json:"trigger_config,omitempty"`
	Steps         []*models.Step     `json:"steps"`
}

// ContinuationResponse is the admin view of a suspended automation run.
// Remaining steps are summarized by count; the full tail is internal.
type ContinuationResponse struct {
	ID             string            `json:"id"`
	AutomationID   string            `json:"automation_id"`
	DealID         string            `json:"deal_id"`
	RemainingSteps int               `json:"remaining_steps"`
	ExecuteAt      *string           `json:"execute_at,omitempty"`
	Condition      *models.Condition `json:"condition,omitempty"`
	CreatedAt      string            `json:"created_at"`
}

// TransformContinuationResponse builds the admin view of a continuation.
func TransformContinuationResponse(continuation *models.Continuation) ContinuationResponse {
	response := ContinuationResponse{
		ID:             continuation.ID,
		AutomationID:   continuation.AutomationID,
		DealID:         continuation.DealID,
		RemainingSteps: len(continuation.RemainingSteps),
		Condition:      continuation.Condition,
		CreatedAt:      continuation.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if continuation.ExecuteAt != nil {
		executeAt := continuation.ExecuteAt.Format("2006-01-02T15:04:05Z07:00")
		response.ExecuteAt = &executeAt
	}

	return response
}
