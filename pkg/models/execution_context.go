package models

// ExecutionContext is the ephemeral state of one automation run. It is
// rebuilt from the store on every run (including resumptions) and never
// persisted as a whole; a suspension persists only what the Continuation
// needs. The contact is derived from Deal.ContactID when an action needs it.
type ExecutionContext struct {
	EventType    string `json:"event_type"`
	TenantID     string `json:"tenant_id"`
	AutomationID string `json:"automation_id"`
	Deal         *Deal  `json:"deal,omitempty"`
	Task         *Task  `json:"task,omitempty"`
}
