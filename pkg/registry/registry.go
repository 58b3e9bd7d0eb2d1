// Package registry maps action types to their factories and validates
// action configs against per-type JSON schemas.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[models.ActionType]protocol.ActionFactory
	schemas   map[models.ActionType]*gojsonschema.Schema
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.ActionType]protocol.ActionFactory),
		schemas:   make(map[models.ActionType]*gojsonschema.Schema),
	}
}

// RegisterAction adds a factory. A non-empty schema is compiled up front so
// a bad schema fails at startup, not on first use.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) error {
	if raw := factory.Schema(); raw != "" {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return fmt.Errorf("invalid schema for action type %s: %w", factory.ID(), err)
		}

		r.schemas[factory.ID()] = schema
	}

	r.factories[factory.ID()] = factory

	return nil
}

// CreateAction builds the executable action for an ACTION step.
func (r *Registry) CreateAction(step *models.Step) (protocol.Action, error) {
	factory, ok := r.factories[step.ActionType]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered", step.ActionType)
	}

	return factory.Create(step)
}

// ValidateConfig checks an action config against its registered schema.
// Used when automations are saved; the executor itself stays lenient and
// skips misconfigured steps at run time.
func (r *Registry) ValidateConfig(actionType models.ActionType, config map[string]any) error {
	schema, ok := r.schemas[actionType]
	if !ok {
		if _, registered := r.factories[actionType]; !registered {
			return fmt.Errorf("action type %q not registered", actionType)
		}

		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("failed to validate config for %s: %w", actionType, err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid config for %s: %s", actionType, result.Errors()[0].String())
	}

	return nil
}

// ActionTypes lists the registered types in stable order.
func (r *Registry) ActionTypes() []models.ActionType {
	types := make([]models.ActionType, 0, len(r.factories))
	for actionType := range r.factories {
		types = append(types, actionType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}
