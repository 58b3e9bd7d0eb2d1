package crm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vendaflow/vendaflow/pkg/models"
)

// MemoryStore is an in-memory EntityStore for tests and local development.
type MemoryStore struct {
	mu sync.RWMutex

	deals        map[string]*models.Deal
	contacts     map[string]*models.Contact
	stages       map[string]*models.Stage
	pipelines    map[string]*models.Pipeline
	tasks        map[string]*models.Task
	notes        map[string]*models.CalendarNote
	fieldDefs    map[string][]*models.CustomFieldDefinition
	contactDefs  map[string][]*models.CustomFieldDefinition
	templates    map[string]*models.EmailTemplate
	settings     map[string]*models.TenantSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deals:       make(map[string]*models.Deal),
		contacts:    make(map[string]*models.Contact),
		stages:      make(map[string]*models.Stage),
		pipelines:   make(map[string]*models.Pipeline),
		tasks:       make(map[string]*models.Task),
		notes:       make(map[string]*models.CalendarNote),
		fieldDefs:   make(map[string][]*models.CustomFieldDefinition),
		contactDefs: make(map[string][]*models.CustomFieldDefinition),
		templates:   make(map[string]*models.EmailTemplate),
		settings:    make(map[string]*models.TenantSettings),
	}
}

func key(tenantID, id string) string {
	return tenantID + "/" + id
}

// Seed helpers. Not part of EntityStore; tests use them to arrange data.

func (m *MemoryStore) PutDeal(deal *models.Deal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *deal
	m.deals[key(deal.TenantID, deal.ID)] = &copied
}

func (m *MemoryStore) PutContact(contact *models.Contact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[key(contact.TenantID, contact.ID)] = contact
}

func (m *MemoryStore) PutStage(stage *models.Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[key(stage.TenantID, stage.ID)] = stage
}

func (m *MemoryStore) PutPipeline(pipeline *models.Pipeline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines[key(pipeline.TenantID, pipeline.ID)] = pipeline
}

func (m *MemoryStore) PutCustomFieldDefinition(def *models.CustomFieldDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fieldDefs[def.TenantID] = append(m.fieldDefs[def.TenantID], def)
}

func (m *MemoryStore) PutContactCustomFieldDefinition(def *models.CustomFieldDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contactDefs[def.TenantID] = append(m.contactDefs[def.TenantID], def)
}

func (m *MemoryStore) PutEmailTemplate(template *models.EmailTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[key(template.TenantID, template.ID)] = template
}

func (m *MemoryStore) PutTenantSettings(settings *models.TenantSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.TenantID] = settings
}

// Tasks returns all tasks created for a tenant, for test assertions.
func (m *MemoryStore) Tasks(tenantID string) []*models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]*models.Task, 0)

	for _, task := range m.tasks {
		if task.TenantID == tenantID {
			tasks = append(tasks, task)
		}
	}

	return tasks
}

// CalendarNotes returns all calendar notes for a tenant.
func (m *MemoryStore) CalendarNotes(tenantID string) []*models.CalendarNote {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := make([]*models.CalendarNote, 0)

	for _, note := range m.notes {
		if note.TenantID == tenantID {
			notes = append(notes, note)
		}
	}

	return notes
}

// Deals returns all deals for a tenant.
func (m *MemoryStore) Deals(tenantID string) []*models.Deal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deals := make([]*models.Deal, 0)

	for _, deal := range m.deals {
		if deal.TenantID == tenantID {
			copied := *deal
			deals = append(deals, &copied)
		}
	}

	return deals
}

// EntityStore implementation.

func (m *MemoryStore) GetDeal(_ context.Context, tenantID, id string) (*models.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deal, ok := m.deals[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *deal

	return &copied, nil
}

func (m *MemoryStore) CreateDeal(_ context.Context, deal *models.Deal) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	copied := *deal
	m.deals[key(deal.TenantID, deal.ID)] = &copied

	return deal, nil
}

func (m *MemoryStore) UpdateDeal(_ context.Context, tenantID, id string, patch DealPatch) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deal, ok := m.deals[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Status != nil {
		deal.Status = *patch.Status
	}

	if patch.StageID != nil {
		deal.StageID = *patch.StageID
	}

	if patch.AddNote != nil {
		deal.Notes = append(deal.Notes, *patch.AddNote)
	}

	if patch.AddHistory != nil {
		deal.History = append([]models.HistoryEntry{*patch.AddHistory}, deal.History...)
	}

	deal.UpdatedAt = time.Now().UTC()

	copied := *deal

	return &copied, nil
}

func (m *MemoryStore) GetStage(_ context.Context, tenantID, id string) (*models.Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stage, ok := m.stages[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	return stage, nil
}

func (m *MemoryStore) GetPipeline(_ context.Context, tenantID, id string) (*models.Pipeline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pipeline, ok := m.pipelines[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	return pipeline, nil
}

func (m *MemoryStore) GetContact(_ context.Context, tenantID, id string) (*models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contact, ok := m.contacts[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	return contact, nil
}

func (m *MemoryStore) GetTask(_ context.Context, tenantID, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	return task, nil
}

func (m *MemoryStore) CustomFieldDefinitions(_ context.Context, tenantID string) ([]*models.CustomFieldDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.fieldDefs[tenantID], nil
}

func (m *MemoryStore) ContactCustomFieldDefinitions(_ context.Context, tenantID string) ([]*models.CustomFieldDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.contactDefs[tenantID], nil
}

func (m *MemoryStore) GetEmailTemplate(_ context.Context, tenantID, id string) (*models.EmailTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	template, ok := m.templates[key(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}

	return template, nil
}

func (m *MemoryStore) TenantSettings(_ context.Context, tenantID string) (*models.TenantSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings, ok := m.settings[tenantID]
	if !ok {
		return nil, ErrNotFound
	}

	return settings, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	task.CreatedAt = time.Now().UTC()
	m.tasks[key(task.TenantID, task.ID)] = task

	return nil
}

func (m *MemoryStore) CreateCalendarNote(_ context.Context, note *models.CalendarNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	note.CreatedAt = time.Now().UTC()
	m.notes[key(note.TenantID, note.ID)] = note

	return nil
}
