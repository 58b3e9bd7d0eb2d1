package updatestatus

import (
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

type Factory struct {
	store crm.EntityStore
}

func NewFactory(store crm.EntityStore) *Factory {
	return &Factory{store: store}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionUpdateDealStatus
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, store: f.store}, nil
}

func (f *Factory) Schema() string {
	return `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string", "enum": ["OPEN", "WON", "LOST"]}
		}
	}`
}
