// Package createtask implements the CREATE_TASK automation action.
package createtask

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

type Action struct {
	step     *models.Step
	store    crm.EntityStore
	resolver *template.Resolver
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	title, ok := a.step.ConfigString("task_title")
	if !ok || ectx.Deal == nil {
		logger.Warn("CREATE_TASK step missing title or deal, skipping")

		return protocol.Continue(), nil
	}

	// No offset means no due date, not "due today".
	dueDate := ""
	if raw, ok := a.step.ConfigNumber("task_due_date_offset_days"); ok {
		dueDate = models.FutureDate(int(raw))
	}

	task := &models.Task{
		ID:        uuid.NewString(),
		TenantID:  ectx.TenantID,
		Title:     a.resolver.Resolve(ctx, title, ectx),
		DueDate:   dueDate,
		DealID:    ectx.Deal.ID,
		ContactID: ectx.Deal.ContactID,
	}

	logger.Info("Creating task from automation", "title", task.Title, "due", task.DueDate)

	if err := a.store.CreateTask(ctx, task); err != nil {
		return protocol.Result{}, err
	}

	return protocol.Continue(), nil
}
