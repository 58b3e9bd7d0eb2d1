// Package email implements the SEND_EMAIL automation action.
package email

import (
	"context"
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/outbound"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

// Action renders a stored email template and sends it to the deal's
// contact through the tenant SMTP transport. A history entry is recorded
// on successful send only.
type Action struct {
	step     *models.Step
	store    crm.EntityStore
	resolver *template.Resolver
	mailer   outbound.Mailer
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	templateID, ok := a.step.ConfigString("template_id")
	if !ok || ectx.Deal == nil {
		logger.Warn("SEND_EMAIL step missing template or deal, skipping")

		return protocol.Continue(), nil
	}

	mailTemplate, err := a.store.GetEmailTemplate(ctx, ectx.TenantID, templateID)
	if err != nil {
		logger.Warn("SEND_EMAIL template not found, skipping", "template_id", templateID)

		return protocol.Continue(), nil
	}

	contact, err := a.store.GetContact(ctx, ectx.TenantID, ectx.Deal.ContactID)
	if err != nil || contact.Email == "" {
		logger.Warn("SEND_EMAIL no contact or email for deal, skipping", "deal_id", ectx.Deal.ID)

		return protocol.Continue(), nil
	}

	settings, err := a.store.TenantSettings(ctx, ectx.TenantID)
	if err != nil || !settings.HasSMTP() {
		logger.Warn("SEND_EMAIL no SMTP configuration for tenant, skipping", "tenant_id", ectx.TenantID)

		return protocol.Continue(), nil
	}

	resolvedSubject := a.resolver.Resolve(ctx, mailTemplate.Subject, ectx)
	resolvedBody := a.resolver.Resolve(ctx, mailTemplate.Body, ectx)

	logger.Info("Sending automation email",
		"template", mailTemplate.Name, "to", contact.Email)

	err = a.mailer.Send(ctx, settings, outbound.MailMessage{
		To:      contact.Email,
		Subject: resolvedSubject,
		HTML:    resolvedBody,
	})
	if err != nil {
		logger.Error("Automation email failed to send", "error", err)

		return protocol.Continue(), nil
	}

	history := models.NewHistoryEntry("Email Sent via Automation", map[string]any{
		"to":      contact.Email,
		"subject": resolvedSubject,
	})

	_, err = a.store.UpdateDeal(ctx, ectx.TenantID, ectx.Deal.ID, crm.DealPatch{
		AddHistory: &history,
	})
	if err != nil {
		logger.Warn("Failed to record email history entry", "error", err)
	}

	return protocol.Continue(), nil
}
