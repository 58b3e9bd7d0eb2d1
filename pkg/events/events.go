// Package events defines the CRM domain events the engine consumes and the
// lifecycle events it publishes.
package events

import (
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
)

type EventType string

// Kafka topics.
const CRMTopic = "vendaflow.crm.events"       // Domain events produced by the CRUD layer
const EngineTopic = "vendaflow.engine.events" // Lifecycle events produced by the engine

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

// Domain event types. Values match models.TriggerType so trigger matching
// is a direct comparison.
const (
	DealCreatedEvent         EventType = "DEAL_CREATED"
	DealStageChangedEvent    EventType = "DEAL_STAGE_CHANGED"
	DealStatusUpdatedEvent   EventType = "DEAL_STATUS_UPDATED"
	DealEnteredPipelineEvent EventType = "DEAL_ENTERED_PIPELINE"
	NoteAddedToDealEvent     EventType = "NOTE_ADDED_TO_DEAL"
	TaskCreatedEvent         EventType = "TASK_CREATED"
	TaskCompletedEvent       EventType = "TASK_COMPLETED"

	// DealMutatedEvent is emitted after any deal update, whether or not the
	// update is also a trigger. It drives condition-based resumption only.
	DealMutatedEvent EventType = "DEAL_MUTATED"
)

// Engine lifecycle event types.
const (
	AutomationTriggeredEvent EventType = "automation.triggered"
	AutomationSuspendedEvent EventType = "automation.suspended"
	AutomationResumedEvent   EventType = "automation.resumed"
	AutomationFinishedEvent  EventType = "automation.finished"
)

// DomainEvent is the tagged union of CRM events. Type selects which payload
// fields are meaningful: stage changes carry Old/NewStageID, status updates
// NewStatus, pipeline entries PipelineID. Events are immutable and consumed
// once by the trigger matcher.
type DomainEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TenantID  string    `json:"tenant_id"`
	DealID    string    `json:"deal_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	OldStageID string `json:"old_stage_id,omitempty"`
	NewStageID string `json:"new_stage_id,omitempty"`
	NewStatus  string `json:"new_status,omitempty"`
	PipelineID string `json:"pipeline_id,omitempty"`
}

// TriggerType maps the event type onto the automation trigger enum.
func (e *DomainEvent) TriggerType() models.TriggerType {
	return models.TriggerType(e.Type)
}

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	TenantID     string         `json:"tenant_id"`
	AutomationID string         `json:"automation_id"`
	DealID       string         `json:"deal_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type AutomationTriggered struct {
	BaseEvent

	TriggerType string `json:"trigger_type"`
}

func (a AutomationTriggered) GetType() EventType {
	return AutomationTriggeredEvent
}

type AutomationSuspended struct {
	BaseEvent

	ContinuationID string     `json:"continuation_id"`
	ResumeAt       *time.Time `json:"resume_at,omitempty"`
}

func (a AutomationSuspended) GetType() EventType {
	return AutomationSuspendedEvent
}

type AutomationResumed struct {
	BaseEvent

	ContinuationID string `json:"continuation_id"`
}

func (a AutomationResumed) GetType() EventType {
	return AutomationResumedEvent
}

type AutomationFinished struct {
	BaseEvent

	Duration time.Duration `json:"duration"`
}

func (a AutomationFinished) GetType() EventType {
	return AutomationFinishedEvent
}
