package models

import (
	"time"

	"github.com/google/uuid"
)

// DealStatus is the commercial state of a deal.
type DealStatus string

const (
	DealStatusOpen DealStatus = "OPEN"
	DealStatusWon  DealStatus = "WON"
	DealStatusLost DealStatus = "LOST"
)

// HistoryEntry is one audit record on a deal. Entries are prepended, newest
// first, matching how the CRUD layer stores them.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewHistoryEntry builds a history record for an automation side effect.
func NewHistoryEntry(action string, details map[string]any) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New().String(),
		Action:    action,
		CreatedAt: time.Now().UTC(),
		Details:   details,
	}
}

// DealNote is a free-text note attached to a deal.
type DealNote struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Deal is the central CRM record automations act on. CustomFields is keyed
// by custom field definition ID. DueDate is a YYYY-MM-DD calendar date.
type Deal struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Value        float64        `json:"value"`
	ContactID    string         `json:"contact_id"`
	StageID      string         `json:"stage_id"`
	Status       DealStatus     `json:"status"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
	Notes        []DealNote     `json:"notes,omitempty"`
	History      []HistoryEntry `json:"history,omitempty"`
	Observation  string         `json:"observation,omitempty"`
	DueDate      string         `json:"due_date,omitempty"`
	TenantID     string         `json:"tenant_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Contact is the person a deal belongs to.
type Contact struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phones       []string       `json:"phones,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
	TenantID     string         `json:"tenant_id"`
}

// Stage is one column of a pipeline.
type Stage struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PipelineID string `json:"pipeline_id"`
	Order      int    `json:"order"`
	TenantID   string `json:"tenant_id"`
}

// Pipeline groups stages.
type Pipeline struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
}

// Task is a to-do item, optionally linked to a deal.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	DueDate     string    `json:"due_date,omitempty"`
	DealID      string    `json:"deal_id,omitempty"`
	ContactID   string    `json:"contact_id,omitempty"`
	TenantID    string    `json:"tenant_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalendarNote is a dated note on the tenant calendar.
type CalendarNote struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Date      string    `json:"date"`
	DealID    string    `json:"deal_id,omitempty"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomFieldDefinition maps a tenant-visible field name to the ID under
// which values are stored on deals and contacts.
type CustomFieldDefinition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
}

// EmailTemplate is a stored subject/body pair referenced by SEND_EMAIL.
type EmailTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	TenantID string `json:"tenant_id"`
}

// TenantSettings carries per-tenant outbound channel credentials. Empty
// fields mean the channel is not configured and dependent actions skip.
type TenantSettings struct {
	TenantID string `json:"tenant_id"`

	// Evolution API (WhatsApp).
	EvolutionInstanceName string `json:"evolution_instance_name,omitempty"`
	EvolutionAPIKey       string `json:"evolution_api_key,omitempty"`
	EvolutionAPIURL       string `json:"evolution_api_url,omitempty"`

	// SMTP.
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUser     string `json:"smtp_user,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
}

// HasWhatsApp reports whether the Evolution API channel is fully configured.
func (s *TenantSettings) HasWhatsApp() bool {
	return s != nil && s.EvolutionInstanceName != "" && s.EvolutionAPIKey != "" && s.EvolutionAPIURL != ""
}

// HasSMTP reports whether the mail transport is fully configured.
func (s *TenantSettings) HasSMTP() bool {
	return s != nil && s.SMTPHost != "" && s.SMTPUser != ""
}
