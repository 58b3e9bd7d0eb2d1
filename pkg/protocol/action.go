// Package protocol defines the contracts between the interpreter and the
// pluggable action implementations.
package protocol

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
)

// Signal tells the interpreter how to proceed after an action.
type Signal int

const (
	// SignalContinue moves on to the next step in the sequence.
	SignalContinue Signal = iota
	// SignalSuspend stops the current sequence; the interpreter persists
	// the untouched tail as a continuation using the returned criterion.
	SignalSuspend
)

// Result is what an action execution produces. ResumeAt / ResumeCondition
// are only meaningful with SignalSuspend; exactly one of them is set.
type Result struct {
	Signal          Signal
	ResumeAt        *time.Time
	ResumeCondition *models.Condition
}

// Continue is the zero Result, returned by every non-suspending action.
func Continue() Result {
	return Result{Signal: SignalContinue}
}

// Action is one executable automation step. Execute validates its own
// config and skips silently (returns Continue) when required fields are
// missing or referenced entities cannot be found; it returns an error only
// for store failures that abort the whole unit of work.
type Action interface {
	Execute(ctx context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (Result, error)
}

// ActionFactory builds an action from an ACTION step. The factory captures
// the collaborators (store, resolver, outbound clients) the action needs.
type ActionFactory interface {
	Create(step *models.Step) (Action, error)
	ID() models.ActionType
	// Schema is the JSON schema the step's action_config must satisfy when
	// an automation is saved. Empty means no config is required.
	Schema() string
}
