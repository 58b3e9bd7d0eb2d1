package calendarnote

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
	return models.ActionCreateCalendarNote
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store, resolver: f.resolver}, nil
}

func (f *Factory) Schema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "Create Calendar Note Action Configuration",
		"type": "object",
		"properties": {
			"note_title": {
				"type": "string",
				"description": "Calendar note title, placeholders allowed"
			},
			"note_date_offset_days": {
				"type": "number",
				"description": "Days from today for the note date"
			},
			"calendar_note_content": {
				"type": "string",
				"description": "Optional note body, placeholders allowed"
			}
		},
		"required": ["note_title", "note_date_offset_days"]
	}`
}
