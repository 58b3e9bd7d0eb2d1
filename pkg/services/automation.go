package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
	"github.com/vendaflow/vendaflow/pkg/registry"
)

// ErrAutomationNotFound is returned when an automation is not found.
var ErrAutomationNotFound = persistence.ErrAutomationNotFound

// triggerConfigKeys maps parameterized trigger types to the config key they
// require. Triggers absent from this map take no config.
var triggerConfigKeys = map[models.TriggerType]string{
	models.TriggerDealStageChanged:    "stage_id",
	models.TriggerDealStatusUpdated:   "status",
	models.TriggerDealEnteredPipeline: "pipeline_id",
}

var knownTriggers = map[models.TriggerType]struct{}{
	models.TriggerDealCreated:         {},
	models.TriggerDealStageChanged:    {},
	models.TriggerDealStatusUpdated:   {},
	models.TriggerDealEnteredPipeline: {},
	models.TriggerNoteAddedToDeal:     {},
	models.TriggerTaskCreated:         {},
	models.TriggerTaskCompleted:       {},
}

// Automation is the service behind the automation CRUD surface. It owns
// validation: a saved automation is structurally sound, so the engine can
// stay lenient at run time.
type Automation struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
}

// NewAutomation creates a new automation service.
func NewAutomation(p persistence.Persistence, reg *registry.Registry) *Automation {
	return &Automation{
		persistence: p,
		registry:    reg,
		validate:    validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Automation) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all automations of a tenant in creation order.
func (s *Automation) List(ctx context.Context, tenantID string) ([]*models.Automation, error) {
	automations, err := s.persistence.Automations().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}

	return automations, nil
}

// FetchByID retrieves an automation by its ID.
func (s *Automation) FetchByID(ctx context.Context, tenantID, id string) (*models.Automation, error) {
	automation, err := s.persistence.Automations().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return automation, nil
}

// Create validates and stores a new automation.
func (s *Automation) Create(ctx context.Context, automation *models.Automation) (*models.Automation, error) {
	if err := s.validateAutomation(automation); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	automation.ID = uuid.New().String()
	automation.CreatedAt = now
	automation.UpdatedAt = now

	if err := s.persistence.Automations().Save(ctx, automation); err != nil {
		return nil, fmt.Errorf("failed to create automation: %w", err)
	}

	return automation, nil
}

// Update replaces an existing automation, keeping its identity and creation
// time.
func (s *Automation) Update(ctx context.Context, tenantID, id string, automation *models.Automation) (*models.Automation, error) {
	existing, err := s.persistence.Automations().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	automation.TenantID = tenantID

	if err := s.validateAutomation(automation); err != nil {
		return nil, err
	}

	automation.ID = existing.ID
	automation.CreatedAt = existing.CreatedAt
	automation.UpdatedAt = time.Now().UTC()

	if err := s.persistence.Automations().Save(ctx, automation); err != nil {
		return nil, fmt.Errorf("failed to update automation: %w", err)
	}

	return automation, nil
}

// Delete removes an automation and every continuation suspended under it.
// Orphaned continuations would otherwise resume steps of an automation that
// no longer exists.
func (s *Automation) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.persistence.Automations().GetByID(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.persistence.Continuations().DeleteByAutomation(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete continuations of automation %s: %w", id, err)
	}

	if err := s.persistence.Automations().Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete automation %s: %w", id, err)
	}

	return nil
}

func (s *Automation) validateAutomation(automation *models.Automation) error {
	if automation == nil {
		return ErrAutomationNil
	}

	if err := s.validate.Struct(automation); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return NewValidationError(
				"validateAutomation",
				"INVALID_FIELD",
				fmt.Sprintf("field '%s' failed validation '%s'", fieldErrors[0].Field(), fieldErrors[0].Tag()),
				ErrInvalidRequest,
			)
		}

		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if _, known := knownTriggers[automation.TriggerType]; !known {
		return NewValidationError(
			"validateAutomation",
			"UNKNOWN_TRIGGER",
			fmt.Sprintf("unknown trigger type '%s'", automation.TriggerType),
			ErrUnknownTriggerType,
		)
	}

	if key, required := triggerConfigKeys[automation.TriggerType]; required {
		if _, ok := automation.TriggerConfigString(key); !ok {
			return NewValidationError(
				"validateAutomation",
				"MISSING_TRIGGER_CONFIG",
				fmt.Sprintf("trigger '%s' requires config key '%s'", automation.TriggerType, key),
				ErrTriggerConfigRequired,
			)
		}
	}

	return s.validateSteps(automation.Steps)
}

// validateSteps walks the step tree depth first, checking the tagged union
// shape of every node and each action config against its schema.
func (s *Automation) validateSteps(steps []*models.Step) error {
	for _, step := range steps {
		if step == nil {
			return NewValidationError("validateSteps", "NIL_STEP", "step cannot be null", ErrInvalidStepTree)
		}

		switch step.Type {
		case models.StepTypeAction:
			if err := s.registry.ValidateConfig(step.ActionType, step.ActionConfig); err != nil {
				return NewValidationError(
					"validateSteps",
					"INVALID_ACTION_CONFIG",
					err.Error(),
					ErrInvalidActionConfig,
				)
			}
		case models.StepTypeCondition:
			if err := s.validateCondition(step.Condition); err != nil {
				return err
			}

			if err := s.validateSteps(step.OnTrue); err != nil {
				return err
			}

			if err := s.validateSteps(step.OnFalse); err != nil {
				return err
			}
		default:
			return NewValidationError(
				"validateSteps",
				"UNKNOWN_STEP_TYPE",
				fmt.Sprintf("unknown step type '%s'", step.Type),
				ErrInvalidStepTree,
			)
		}
	}

	return nil
}

func (s *Automation) validateCondition(condition *models.Condition) error {
	if condition == nil {
		return NewValidationError(
			"validateCondition",
			"MISSING_CONDITION",
			"condition step requires a condition",
			ErrInvalidCondition,
		)
	}

	if condition.Field == "" || condition.Operator == "" {
		return NewValidationError(
			"validateCondition",
			"INCOMPLETE_CONDITION",
			"condition requires field and operator",
			ErrInvalidCondition,
		)
	}

	// CustomFieldID is set iff the field is DEAL_CUSTOM_FIELD.
	isCustom := condition.Field == models.FieldDealCustomField
	if isCustom != (condition.CustomFieldID != "") {
		return NewValidationError(
			"validateCondition",
			"CUSTOM_FIELD_MISMATCH",
			"custom_field_id is required for DEAL_CUSTOM_FIELD and forbidden otherwise",
			ErrInvalidCondition,
		)
	}

	return nil
}
