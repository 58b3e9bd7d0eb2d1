// Package whatsapp implements the SEND_WHATSAPP automation action.
package whatsapp

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/outbound"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

var nonDigits = regexp.MustCompile(`\D`)

// Action sends a text through the tenant's Evolution API channel. A tenant
// without a fully configured channel short-circuits the action without
// failing the run.
type Action struct {
	step     *models.Step
	store    crm.EntityStore
	resolver *template.Resolver
	sender   outbound.WhatsAppSender
}

func (a *Action) Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	number, okNumber := a.step.ConfigString("whatsapp_number")
	text, okText := a.step.ConfigString("whatsapp_text")

	settings, err := a.store.TenantSettings(ctx, ectx.TenantID)
	if err != nil || !okNumber || !okText || !settings.HasWhatsApp() {
		logger.Warn("SEND_WHATSAPP missing number, text, or channel configuration, skipping")

		return protocol.Continue(), nil
	}

	resolvedNumber := nonDigits.ReplaceAllString(a.resolver.Resolve(ctx, number, ectx), "")
	resolvedText := a.resolver.Resolve(ctx, text, ectx)

	if resolvedNumber == "" {
		logger.Warn("SEND_WHATSAPP recipient resolved to empty number, skipping")

		return protocol.Continue(), nil
	}

	logger.Info("Sending automation WhatsApp message", "number", resolvedNumber)

	if err := a.sender.SendText(ctx, settings, resolvedNumber, resolvedText); err != nil {
		logger.Error("Automation WhatsApp message failed", "error", err)
	}

	return protocol.Continue(), nil
}
