package models

// StepType discriminates the Step tagged union.
type StepType string

const (
	StepTypeAction    StepType = "ACTION"
	StepTypeCondition StepType = "CONDITION"
)

// ActionType identifies the side effect an action step performs.
type ActionType string

const (
	ActionCreateDeal         ActionType = "CREATE_DEAL"
	ActionAddNote            ActionType = "ADD_NOTE"
	ActionUpdateDealStatus   ActionType = "UPDATE_DEAL_STATUS"
	ActionMoveDealToStage    ActionType = "MOVE_DEAL_TO_STAGE"
	ActionWait               ActionType = "WAIT"
	ActionSendWebhook        ActionType = "SEND_WEBHOOK"
	ActionSendWhatsApp       ActionType = "SEND_WHATSAPP"
	ActionSendEmail          ActionType = "SEND_EMAIL"
	ActionCreateTask         ActionType = "CREATE_TASK"
	ActionCreateCalendarNote ActionType = "CREATE_CALENDAR_NOTE"
)

// Step is one node of an automation's execution tree. It is a tagged union:
// ACTION steps carry ActionType/ActionConfig, CONDITION steps carry
// Condition plus the two branches. Branches hold sub-sequences, so a step
// tree is finite and acyclic; there is no loop construct.
type Step struct {
	Type StepType `json:"type" validate:"required,oneof=ACTION CONDITION"`

	// ACTION fields.
	ActionType   ActionType     `json:"action_type,omitempty"`
	ActionConfig map[string]any `json:"action_config,omitempty"`

	// CONDITION fields.
	Condition *Condition `json:"condition,omitempty"`
	OnTrue    []*Step    `json:"on_true,omitempty"`
	OnFalse   []*Step    `json:"on_false,omitempty"`
}

// ConfigString reads a string field from the action config. Missing or
// non-string values return false so the executor can skip the step.
func (s *Step) ConfigString(key string) (string, bool) {
	if s.ActionConfig == nil {
		return "", false
	}

	value, ok := s.ActionConfig[key].(string)
	if !ok || value == "" {
		return "", false
	}

	return value, true
}

// ConfigNumber reads a numeric field from the action config. JSON decoding
// produces float64; string digits are accepted too since the builder UI
// stores offsets as text.
func (s *Step) ConfigNumber(key string) (float64, bool) {
	if s.ActionConfig == nil {
		return 0, false
	}

	switch v := s.ActionConfig[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		return parseFloat(v)
	default:
		return 0, false
	}
}
