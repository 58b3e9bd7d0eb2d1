package createtask

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
	return models.ActionCreateTask
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store, resolver: f.resolver}, nil
}

func (f *Factory) Schema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "Create Task Action Configuration",
		"type": "object",
		"properties": {
			"task_title": {
				"type": "string",
				"description": "Task title, placeholders allowed"
			},
			"task_due_date_offset_days": {
				"type": "number",
				"description": "Days from today until the task is due"
			}
		},
		"required": ["task_title"]
	}`
}
