// Package calendarnote implements the CREATE_CALENDAR_NOTE automation action.
package calendarnote

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
	title, hasTitle := a.step.ConfigString("note_title")
	offset, hasOffset := a.step.ConfigNumber("note_date_offset_days")

	if !hasTitle || !hasOffset {
		logger.Warn("CREATE_CALENDAR_NOTE step missing title or date offset, skipping")

		return protocol.Continue(), nil
	}

	content, _ := a.step.ConfigString("calendar_note_content")

	// Deal-less contexts (task-triggered automations) create unlinked notes.
	note := &models.CalendarNote{
		ID:       uuid.NewString(),
		TenantID: ectx.TenantID,
		Title:    a.resolver.Resolve(ctx, title, ectx),
		Content:  a.resolver.Resolve(ctx, content, ectx),
		Date:     models.FutureDate(int(offset)),
	}
	if ectx.Deal != nil {
		note.DealID = ectx.Deal.ID
	}

	logger.Info("Creating calendar note from automation", "title", note.Title, "date", note.Date)

	if err := a.store.CreateCalendarNote(ctx, note); err != nil {
		return protocol.Result{}, err
	}

	return protocol.Continue(), nil
}
