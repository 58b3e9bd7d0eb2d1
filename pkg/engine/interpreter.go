package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence"
	"github.com/vendaflow/vendaflow/pkg/protocol"
	"github.com/vendaflow/vendaflow/pkg/registry"
)

// Interpreter walks a step sequence, executing actions and branching on
// conditions. It is the only component that knows the untouched tail of a
// sequence, so it also owns persisting continuations when an action
// suspends.
//
// A run either finishes or suspends; the two are reported through RunOutcome
// so the engine can publish the matching lifecycle event.
type Interpreter struct {
	registry      *registry.Registry
	evaluator     *Evaluator
	continuations persistence.ContinuationRepository
	logger        *slog.Logger
}

// RunOutcome describes how a step sequence ended.
type RunOutcome struct {
	// Suspended is set when a WAIT persisted a continuation. Steps after
	// the WAIT in its own sequence moved into the continuation; an
	// enclosing sequence keeps running past the condition that contained
	// the WAIT.
	Suspended    bool
	Continuation *models.Continuation
}

func NewInterpreter(
	reg *registry.Registry,
	evaluator *Evaluator,
	continuations persistence.ContinuationRepository,
	logger *slog.Logger,
) *Interpreter {
	return &Interpreter{
		registry:      reg,
		evaluator:     evaluator,
		continuations: continuations,
		logger:        logger.With("module", "interpreter"),
	}
}

// Run executes steps in order against the execution context. A WAIT
// suspends only the sequence it sits in: its tail becomes the continuation,
// and an enclosing sequence carries on after the condition step.
func (i *Interpreter) Run(ctx context.Context, steps []*models.Step, ectx *models.ExecutionContext) (RunOutcome, error) {
	var suspension RunOutcome

	for index, step := range steps {
		if step == nil {
			continue
		}

		switch step.Type {
		case models.StepTypeAction:
			outcome, err := i.runAction(ctx, step, steps[index+1:], ectx)
			if err != nil {
				return RunOutcome{}, err
			}

			if outcome.Suspended {
				return outcome, nil
			}
		case models.StepTypeCondition:
			branch := step.OnFalse
			if i.evaluator.Evaluate(ctx, step.Condition, ectx) {
				branch = step.OnTrue
			}

			outcome, err := i.Run(ctx, branch, ectx)
			if err != nil {
				return RunOutcome{}, err
			}

			// A branch suspension is local to the branch: its tail is
			// already persisted, and the steps after the condition still
			// run now. Remember the first suspension for the outcome.
			if outcome.Suspended && !suspension.Suspended {
				suspension = outcome
			}
		default:
			i.logger.Warn("Skipping step with unknown type", "type", step.Type)
		}
	}

	return suspension, nil
}

func (i *Interpreter) runAction(ctx context.Context, step *models.Step, tail []*models.Step, ectx *models.ExecutionContext) (RunOutcome, error) {
	action, err := i.registry.CreateAction(step)
	if err != nil {
		i.logger.Warn("Skipping unknown action type", "action_type", step.ActionType)

		return RunOutcome{}, nil
	}

	logger := i.logger.With(
		"automation_id", ectx.AutomationID,
		"action_type", step.ActionType,
	)

	result, err := action.Execute(ctx, ectx, logger)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("action %s failed: %w", step.ActionType, err)
	}

	if result.Signal != protocol.SignalSuspend {
		return RunOutcome{}, nil
	}

	return i.suspend(ctx, result, tail, ectx)
}

// suspend persists the untouched tail as a continuation. Suspending with no
// deal or an empty tail degenerates to continue: there is nothing to resume.
func (i *Interpreter) suspend(ctx context.Context, result protocol.Result, tail []*models.Step, ectx *models.ExecutionContext) (RunOutcome, error) {
	if ectx.Deal == nil || len(tail) == 0 {
		return RunOutcome{}, nil
	}

	continuation := &models.Continuation{
		ID:             uuid.NewString(),
		TenantID:       ectx.TenantID,
		DealID:         ectx.Deal.ID,
		AutomationID:   ectx.AutomationID,
		RemainingSteps: tail,
		ExecuteAt:      result.ResumeAt,
		Condition:      result.ResumeCondition,
		CreatedAt:      time.Now().UTC(),
	}

	if err := i.continuations.Save(ctx, continuation); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to persist continuation: %w", err)
	}

	i.logger.Info("Automation suspended",
		"automation_id", ectx.AutomationID,
		"deal_id", ectx.Deal.ID,
		"continuation_id", continuation.ID,
		"remaining_steps", len(tail),
	)

	return RunOutcome{Suspended: true, Continuation: continuation}, nil
}
