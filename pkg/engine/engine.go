// Package engine runs automations: it matches domain events to triggers,
// interprets step trees, and resumes suspended runs on deadlines and deal
// mutations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/eventbus"
	"github.com/vendaflow/vendaflow/pkg/events"
	"github.com/vendaflow/vendaflow/pkg/lock"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/otelhelper"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// Engine is the facade over the matcher, interpreter and continuation
// stores. One Engine instance serves all tenants; per-deal locking keeps
// concurrent events for the same deal from interleaving.
type Engine struct {
	matcher       *TriggerMatcher
	interpreter   *Interpreter
	evaluator     *Evaluator
	store         crm.EntityStore
	continuations persistence.ContinuationRepository
	locker        lock.DealLocker
	publisher     eventbus.EventPublisher
	logger        *slog.Logger
	tracer        trace.Tracer
}

func New(
	matcher *TriggerMatcher,
	interpreter *Interpreter,
	evaluator *Evaluator,
	store crm.EntityStore,
	continuations persistence.ContinuationRepository,
	locker lock.DealLocker,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		matcher:       matcher,
		interpreter:   interpreter,
		evaluator:     evaluator,
		store:         store,
		continuations: continuations,
		locker:        locker,
		publisher:     publisher,
		logger:        logger.With("module", "engine"),
		tracer:        otel.Tracer("vendaflow.engine"),
	}
}

// OnEvent is the entry point for CRM domain events. DEAL_MUTATED events
// drive condition-based resumption; every other type goes through trigger
// matching. Matched automations run sequentially in repository order.
func (e *Engine) OnEvent(ctx context.Context, event *events.DomainEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.on_event",
		attribute.String(otelhelper.EventTypeKey, string(event.Type)),
		attribute.String(otelhelper.TenantIDKey, event.TenantID),
	)
	defer span.End()

	if event.Type == events.DealMutatedEvent {
		return e.OnDealMutated(ctx, event.TenantID, event.DealID)
	}

	matched, err := e.matcher.Match(ctx, event)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	if len(matched) == 0 {
		return nil
	}

	if event.DealID != "" {
		release, err := e.locker.Acquire(ctx, event.TenantID, event.DealID)
		if err != nil {
			return fmt.Errorf("failed to lock deal %s: %w", event.DealID, err)
		}
		defer release()
	}

	ectx, err := e.buildContext(ctx, event)
	if err != nil {
		return err
	}

	for _, automation := range matched {
		runCtx := *ectx
		runCtx.AutomationID = automation.ID

		if err := e.runAutomation(ctx, automation, &runCtx, event); err != nil {
			// One broken automation must not starve the others matched by
			// the same event.
			e.logger.Error("Automation run failed",
				"automation_id", automation.ID, "error", err)
		}
	}

	return nil
}

// OnDealMutated re-evaluates the deal's condition-based continuations
// against its fresh state and resumes the ones whose condition now holds.
// Take is a consuming read, so a continuation resumes at most once even if
// a due-time sweep races this path.
func (e *Engine) OnDealMutated(ctx context.Context, tenantID, dealID string) error {
	if dealID == "" {
		return nil
	}

	release, err := e.locker.Acquire(ctx, tenantID, dealID)
	if err != nil {
		return fmt.Errorf("failed to lock deal %s: %w", dealID, err)
	}
	defer release()

	continuations, err := e.continuations.ListForDeal(ctx, tenantID, dealID)
	if err != nil {
		return fmt.Errorf("failed to list continuations for deal %s: %w", dealID, err)
	}

	for _, continuation := range continuations {
		if !continuation.IsConditionBased() {
			continue
		}

		deal, err := e.store.GetDeal(ctx, tenantID, dealID)
		if err != nil {
			if errors.Is(err, crm.ErrNotFound) {
				return nil
			}

			return fmt.Errorf("failed to load deal %s: %w", dealID, err)
		}

		ectx := &models.ExecutionContext{
			EventType:    string(events.AutomationResumedEvent),
			TenantID:     tenantID,
			AutomationID: continuation.AutomationID,
			Deal:         deal,
		}

		if !e.evaluator.Evaluate(ctx, continuation.Condition, ectx) {
			continue
		}

		taken, err := e.continuations.Take(ctx, continuation.ID)
		if err != nil {
			if errors.Is(err, persistence.ErrContinuationNotFound) {
				continue
			}

			return fmt.Errorf("failed to take continuation %s: %w", continuation.ID, err)
		}

		if err := e.resume(ctx, taken, ectx); err != nil {
			e.logger.Error("Failed to resume continuation",
				"continuation_id", taken.ID, "error", err)
		}
	}

	return nil
}

// SweepDue resumes every time-based continuation whose deadline has
// passed. The sweeper binary calls this on a schedule; it is safe to run
// from several processes because Take consumes.
func (e *Engine) SweepDue(ctx context.Context, now time.Time) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.sweep_due")
	defer span.End()

	due, err := e.continuations.ListDue(ctx, now)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to list due continuations: %w", err)
	}

	for _, continuation := range due {
		if err := e.resumeDue(ctx, continuation); err != nil {
			e.logger.Error("Failed to resume due continuation",
				"continuation_id", continuation.ID, "error", err)
		}
	}

	return nil
}

func (e *Engine) resumeDue(ctx context.Context, continuation *models.Continuation) error {
	release, err := e.locker.Acquire(ctx, continuation.TenantID, continuation.DealID)
	if err != nil {
		return fmt.Errorf("failed to lock deal %s: %w", continuation.DealID, err)
	}
	defer release()

	taken, err := e.continuations.Take(ctx, continuation.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrContinuationNotFound) {
			return nil
		}

		return fmt.Errorf("failed to take continuation %s: %w", continuation.ID, err)
	}

	deal, err := e.store.GetDeal(ctx, taken.TenantID, taken.DealID)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			e.logger.Warn("Dropping continuation for deleted deal",
				"continuation_id", taken.ID, "deal_id", taken.DealID)

			return nil
		}

		return fmt.Errorf("failed to load deal %s: %w", taken.DealID, err)
	}

	ectx := &models.ExecutionContext{
		EventType:    string(events.AutomationResumedEvent),
		TenantID:     taken.TenantID,
		AutomationID: taken.AutomationID,
		Deal:         deal,
	}

	return e.resume(ctx, taken, ectx)
}

// resume runs a continuation's remaining steps. The caller holds the deal
// lock and has already consumed the continuation.
func (e *Engine) resume(ctx context.Context, continuation *models.Continuation, ectx *models.ExecutionContext) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.resume",
		attribute.String(otelhelper.ContinuationIDKey, continuation.ID),
		attribute.String(otelhelper.AutomationIDKey, continuation.AutomationID),
	)
	defer span.End()

	e.publish(ctx, continuation.DealID, events.AutomationResumed{
		BaseEvent:      e.baseEvent(events.AutomationResumedEvent, ectx),
		ContinuationID: continuation.ID,
	})

	started := time.Now()

	outcome, err := e.interpreter.Run(ctx, continuation.RemainingSteps, ectx)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	e.publishOutcome(ctx, outcome, ectx, started)

	return nil
}

func (e *Engine) runAutomation(ctx context.Context, automation *models.Automation, ectx *models.ExecutionContext, event *events.DomainEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.run_automation",
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.String(otelhelper.TriggerTypeKey, string(automation.TriggerType)),
	)
	defer span.End()

	e.logger.Info("Automation triggered",
		"automation_id", automation.ID,
		"automation", automation.Name,
		"trigger", automation.TriggerType,
	)

	e.publish(ctx, event.DealID, events.AutomationTriggered{
		BaseEvent:   e.baseEvent(events.AutomationTriggeredEvent, ectx),
		TriggerType: string(automation.TriggerType),
	})

	started := time.Now()

	outcome, err := e.interpreter.Run(ctx, automation.Steps, ectx)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	e.publishOutcome(ctx, outcome, ectx, started)

	return nil
}

// buildContext loads the entities the event references. A deal or task
// deleted between the event and its processing yields a context without it;
// actions that need the missing entity skip themselves.
func (e *Engine) buildContext(ctx context.Context, event *events.DomainEvent) (*models.ExecutionContext, error) {
	ectx := &models.ExecutionContext{
		EventType: string(event.Type),
		TenantID:  event.TenantID,
	}

	if event.DealID != "" {
		deal, err := e.store.GetDeal(ctx, event.TenantID, event.DealID)
		if err != nil && !errors.Is(err, crm.ErrNotFound) {
			return nil, fmt.Errorf("failed to load deal %s: %w", event.DealID, err)
		}

		ectx.Deal = deal
	}

	if event.TaskID != "" {
		task, err := e.store.GetTask(ctx, event.TenantID, event.TaskID)
		if err != nil && !errors.Is(err, crm.ErrNotFound) {
			return nil, fmt.Errorf("failed to load task %s: %w", event.TaskID, err)
		}

		ectx.Task = task
	}

	return ectx, nil
}

func (e *Engine) publishOutcome(ctx context.Context, outcome RunOutcome, ectx *models.ExecutionContext, started time.Time) {
	if outcome.Suspended {
		e.publish(ctx, outcome.Continuation.DealID, events.AutomationSuspended{
			BaseEvent:      e.baseEvent(events.AutomationSuspendedEvent, ectx),
			ContinuationID: outcome.Continuation.ID,
			ResumeAt:       outcome.Continuation.ExecuteAt,
		})

		return
	}

	e.publish(ctx, dealID(ectx), events.AutomationFinished{
		BaseEvent: e.baseEvent(events.AutomationFinishedEvent, ectx),
		Duration:  time.Since(started),
	})
}

func (e *Engine) baseEvent(eventType events.EventType, ectx *models.ExecutionContext) events.BaseEvent {
	return events.BaseEvent{
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		TenantID:     ectx.TenantID,
		AutomationID: ectx.AutomationID,
		DealID:       dealID(ectx),
	}
}

// publish sends a lifecycle event. Failures are logged and swallowed;
// observability must not fail a run.
func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}

func dealID(ectx *models.ExecutionContext) string {
	if ectx.Deal == nil {
		return ""
	}

	return ectx.Deal.ID
}
