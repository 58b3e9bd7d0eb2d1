package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vendaflow/vendaflow/pkg/engine"
	"github.com/vendaflow/vendaflow/pkg/eventbus"
	"github.com/vendaflow/vendaflow/pkg/events"
)

// Worker consumes CRM domain events from the bus and hands them to the
// engine. One worker serves all tenants; concurrency control is per deal
// inside the engine.
type Worker struct {
	id       string
	engine   *engine.Engine
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewWorker(id string, eng *engine.Engine, eventBus eventbus.EventBus, logger *slog.Logger) *Worker {
	return &Worker{
		id:       id,
		engine:   eng,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.eventBus.HandleDomainEvents(w.handleDomainEvent)

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started, consuming CRM events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		w.logger.InfoContext(ctx, "Shutting down worker")
	case <-ctx.Done():
	}

	return nil
}

func (w *Worker) handleDomainEvent(ctx context.Context, event *events.DomainEvent) error {
	w.logger.InfoContext(ctx, "Processing CRM event",
		"event_id", event.ID,
		"event_type", event.Type,
		"tenant_id", event.TenantID,
	)

	err := w.engine.OnEvent(ctx, event)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to process CRM event",
			"event_id", event.ID, "error", err)

		return err
	}

	return nil
}
