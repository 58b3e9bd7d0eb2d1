package addnote

import (
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/template"
)

type Factory struct {
	store    crm.EntityStore
	resolver *template.Resolver
}

func NewFactory(store crm.EntityStore, resolver *template.Resolver) *Factory {
	return &Factory{store: store, resolver: resolver}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionAddNote
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store, resolver: f.resolver}, nil
}

func (f *Factory) Schema() string {
	return `{
		"type": "object",
		"required": ["note_content"],
		"properties": {
			"note_content": {"type": "string", "minLength": 1}
		}
	}`
}
