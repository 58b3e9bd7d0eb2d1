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
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// ContinuationRepository stores one JSON file per continuation under
// <root>/continuations/. The mutex makes Take a read-then-delete unit, so
// two resumption paths racing on the same continuation see exactly one
// winner.
type ContinuationRepository struct {
	root string
	mu   sync.Mutex
}

func NewContinuationRepository(root string) *ContinuationRepository {
	return &ContinuationRepository{root: root}
}

func (cr *ContinuationRepository) dir() string {
	return filepath.Join(cr.root, "continuations")
}

func (cr *ContinuationRepository) path(id string) string {
	return filepath.Join(cr.dir(), id+".json")
}

func (cr *ContinuationRepository) Save(_ context.Context, continuation *models.Continuation) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if err := os.MkdirAll(cr.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create continuations directory: %w", err)
	}

	data, err := json.MarshalIndent(continuation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuation %s: %w", continuation.ID, err)
	}

	return os.WriteFile(cr.path(continuation.ID), data, 0o644)
}

func (cr *ContinuationRepository) ListForDeal(_ context.Context, tenantID, dealID string) ([]*models.Continuation, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	return cr.list(func(c *models.Continuation) bool {
		return c.TenantID == tenantID && c.DealID == dealID
	})
}

func (cr *ContinuationRepository) ListDue(_ context.Context, now time.Time) ([]*models.Continuation, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	return cr.list(func(c *models.Continuation) bool {
		return c.IsDue(now)
	})
}

func (cr *ContinuationRepository) Take(_ context.Context, id string) (*models.Continuation, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	continuation, err := cr.read(cr.path(id))
	if os.IsNotExist(err) {
		return nil, persistence.ErrContinuationNotFound
	}

	if err != nil {
		return nil, err
	}

	if err := os.Remove(cr.path(id)); err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrContinuationNotFound
		}

		return nil, err
	}

	return continuation, nil
}

func (cr *ContinuationRepository) DeleteByAutomation(_ context.Context, tenantID, automationID string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	continuations, err := cr.list(func(c *models.Continuation) bool {
		return c.TenantID == tenantID && c.AutomationID == automationID
	})
	if err != nil {
		return err
	}

	for _, continuation := range continuations {
		if err := os.Remove(cr.path(continuation.ID)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

func (cr *ContinuationRepository) list(keep func(*models.Continuation) bool) ([]*models.Continuation, error) {
	if _, err := os.Stat(cr.dir()); os.IsNotExist(err) {
		return make([]*models.Continuation, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(cr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list continuation files: %w", err)
	}

	continuations := make([]*models.Continuation, 0)

	for _, file := range jsonFiles {
		continuation, err := cr.read(filepath.Join(cr.dir(), file))
		if err != nil {
			return nil, err
		}

		if keep(continuation) {
			continuations = append(continuations, continuation)
		}
	}

	sort.Slice(continuations, func(i, j int) bool {
		if continuations[i].CreatedAt.Equal(continuations[j].CreatedAt) {
			return continuations[i].ID < continuations[j].ID
		}

		return continuations[i].CreatedAt.Before(continuations[j].CreatedAt)
	})

	return continuations, nil
}

func (cr *ContinuationRepository) read(path string) (*models.Continuation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	continuation := &models.Continuation{}
	if err := json.Unmarshal(data, continuation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal continuation file %s: %w", path, err)
	}

	return continuation, nil
}
