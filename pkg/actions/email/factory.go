package email

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
	mailer   outbound.Mailer
}

func NewFactory(store crm.EntityStore, resolver *template.Resolver, mailer outbound.Mailer) *Factory {
	return &Factory{store: store, resolver: resolver, mailer: mailer}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendEmail
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store, resolver: f.resolver, mailer: f.mailer}, nil
}

func (f *Factory) Schema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "Send Email Action Configuration",
		"type": "object",
		"properties": {
			"template_id": {
				"type": "string",
				"description": "Identifier of the stored email template to render and send"
			}
		},
		"required": ["template_id"]
	}`
}
