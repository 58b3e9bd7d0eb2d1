// Package file provides file-based persistence for automations and
// continuations. It is meant for development and tests; production
// deployments use the postgresql backend.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root          string
	automations   *AutomationRepository
	continuations *ContinuationRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		automations:   NewAutomationRepository(cleanRoot),
		continuations: NewContinuationRepository(cleanRoot),
	}
}

func (fp *Persistence) Automations() persistence.AutomationRepository {
	return fp.automations
}

func (fp *Persistence) Continuations() persistence.ContinuationRepository {
	return fp.continuations
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
