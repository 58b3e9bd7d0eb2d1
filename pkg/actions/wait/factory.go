package wait

import (
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

type Factory struct {
	now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{now: func() time.Time { return time.Now().UTC() }}
}

// NewFactoryWithClock pins the clock, for tests.
func NewFactoryWithClock(now func() time.Time) *Factory {
	return &Factory{now: now}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionWait
}

func (f *Factory) Create(step *models.Step) (protocol.Action, error) {
	return &Action{step: step, now: f.now}, nil
}

func (f *Factory) Schema() string {
	return `{
		"type": "object",
		"properties": {
			"wait_mode": {"type": "string", "enum": ["DURATION", "CONDITION"]},
			"wait_duration": {"type": ["number", "string"]},
			"wait_unit": {"type": "string", "enum": ["MINUTES", "HOURS", "DAYS"]},
			"wait_days": {"type": ["number", "string"]},
			"wait_condition": {"type": "object"}
		}
	}`
}
