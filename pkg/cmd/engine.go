package cmd

import (
	"log/slog"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/engine"
	"github.com/vendaflow/vendaflow/pkg/eventbus"
	"github.com/vendaflow/vendaflow/pkg/lock"
	"github.com/vendaflow/vendaflow/pkg/persistence"
)

// NewEngine wires the full engine: registry with all native actions, trigger
// matcher, evaluator and interpreter over the given backends.
func NewEngine(
	logger *slog.Logger,
	store crm.EntityStore,
	p persistence.Persistence,
	locker lock.DealLocker,
	publisher eventbus.EventPublisher,
) *engine.Engine {
	reg := NewRegistry(logger, store)
	evaluator := engine.NewEvaluator(store, logger)
	matcher := engine.NewTriggerMatcher(p.Automations(), logger)
	interpreter := engine.NewInterpreter(reg, evaluator, p.Continuations(), logger)

	return engine.New(
		matcher,
		interpreter,
		evaluator,
		store,
		p.Continuations(),
		locker,
		publisher,
		logger,
	)
}
