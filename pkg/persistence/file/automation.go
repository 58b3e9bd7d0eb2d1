package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// AutomationRepository stores one JSON file per automation under
// <root>/automations/<tenant>/.
type AutomationRepository struct {
	root string
	mu   sync.RWMutex
}

func NewAutomationRepository(root string) *AutomationRepository {
	return &AutomationRepository{root: root}
}

func (ar *AutomationRepository) tenantDir(tenantID string) string {
	return filepath.Join(ar.root, "automations", tenantID)
}

func (ar *AutomationRepository) path(tenantID, id string) string {
	return filepath.Join(ar.tenantDir(tenantID), id+".json")
}

// ListByTenant returns the tenant's automations sorted by creation time
// then ID, which keeps trigger matching deterministic.
func (ar *AutomationRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.Automation, error) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	dir := ar.tenantDir(tenantID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return make([]*models.Automation, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list automation files: %w", err)
	}

	automations := make([]*models.Automation, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		automation, err := ar.read(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	sort.Slice(automations, func(i, j int) bool {
		if automations[i].CreatedAt.Equal(automations[j].CreatedAt) {
			return automations[i].ID < automations[j].ID
		}

		return automations[i].CreatedAt.Before(automations[j].CreatedAt)
	})

	return automations, nil
}

func (ar *AutomationRepository) GetByID(_ context.Context, tenantID, id string) (*models.Automation, error) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	automation, err := ar.read(ar.path(tenantID, id))
	if os.IsNotExist(err) {
		return nil, persistence.ErrAutomationNotFound
	}

	return automation, err
}

func (ar *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	dir := ar.tenantDir(automation.TenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create automations directory: %w", err)
	}

	data, err := json.MarshalIndent(automation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal automation %s: %w", automation.ID, err)
	}

	return os.WriteFile(ar.path(automation.TenantID, automation.ID), data, 0o644)
}

func (ar *AutomationRepository) Delete(_ context.Context, tenantID, id string) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	err := os.Remove(ar.path(tenantID, id))
	if os.IsNotExist(err) {
		return persistence.ErrAutomationNotFound
	}

	return err
}

func (ar *AutomationRepository) read(path string) (*models.Automation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	automation := &models.Automation{}
	if err := json.Unmarshal(data, automation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation file %s: %w", path, err)
	}

	return automation, nil
}
