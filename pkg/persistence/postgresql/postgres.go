// Package postgresql provides the PostgreSQL persistence backend.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/vendaflow/vendaflow/pkg/persistence"
	"github.com/vendaflow/vendaflow/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence on PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	automations   *AutomationRepository
	continuations *ContinuationRepository
}

// NewPersistence connects, runs migrations, and returns the backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		automations:   NewAutomationRepository(database, logger),
		continuations: NewContinuationRepository(database, logger),
	}, nil
}

func (p *Persistence) Automations() persistence.AutomationRepository {
	return p.automations
}

func (p *Persistence) Continuations() persistence.ContinuationRepository {
	return p.continuations
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS automations (
				id TEXT PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				name TEXT NOT NULL,
				trigger_type TEXT NOT NULL,
				trigger_config JSONB,
				steps JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_automations_tenant
				ON automations (tenant_id, created_at);

			CREATE TABLE IF NOT EXISTS continuations (
				id TEXT PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				deal_id TEXT NOT NULL,
				automation_id TEXT NOT NULL REFERENCES automations (id) ON DELETE CASCADE,
				remaining_steps JSONB NOT NULL DEFAULT '[]',
				execute_at TIMESTAMP WITH TIME ZONE,
				condition JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_continuations_deal
				ON continuations (tenant_id, deal_id);

			CREATE INDEX IF NOT EXISTS idx_continuations_due
				ON continuations (execute_at)
				WHERE execute_at IS NOT NULL;
		`,
	}
}
