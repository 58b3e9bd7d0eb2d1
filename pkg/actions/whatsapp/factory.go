package whatsapp

import (
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/outbound"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

type Factory struct {
	store    crm.EntityStore
	resolver *template.Resolver
	sender   outbound.WhatsAppSender
}

func NewFactory(store crm.EntityStore, resolver *template.Resolver, sender outbound.WhatsAppSender) *Factory {
	return &Factory{store: store, resolver: resolver, sender: sender}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendWhatsApp
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store, resolver: f.resolver, sender: f.sender}, nil
}

func (f *Factory) Schema() string {
	return `{
		"type": "object",
		"required": ["whatsapp_number", "whatsapp_text"],
		"properties": {
			"whatsapp_number": {"type": "string", "minLength": 1},
			"whatsapp_text": {"type": "string", "minLength": 1}
		}
	}`
}
