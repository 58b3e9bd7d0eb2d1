package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/vendaflow/pkg/actions/addnote"
	"github.com/vendaflow/vendaflow/pkg/actions/createtask"
	"github.com/vendaflow/vendaflow/pkg/actions/wait"
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/persistence/file"
	"github.com/vendaflow/vendaflow/pkg/registry"
	"github.com/vendaflow/vendaflow/pkg/template"
)

type interpreterFixture struct {
	store         *crm.MemoryStore
	continuations *file.ContinuationRepository
	interpreter   *Interpreter
	clock         time.Time
}

func newInterpreterFixture(t *testing.T) *interpreterFixture {
	t.Helper()

	store := crm.NewMemoryStore()
	resolver := template.NewResolver(store)
	logger := testLogger()
	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	reg := registry.NewRegistry(logger)
	require.NoError(t, reg.RegisterAction(addnote.NewFactory(store, resolver)))
	require.NoError(t, reg.RegisterAction(createtask.NewFactory(store, resolver)))
	require.NoError(t, reg.RegisterAction(wait.NewFactoryWithClock(func() time.Time { return clock })))

	continuations := file.NewContinuationRepository(t.TempDir())
	evaluator := NewEvaluator(store, logger)

	return &interpreterFixture{
		store:         store,
		continuations: continuations,
		interpreter:   NewInterpreter(reg, evaluator, continuations, logger),
		clock:         clock,
	}
}

func (f *interpreterFixture) seedDeal(value float64) *models.Deal {
	deal := &models.Deal{
		ID:       "deal-1",
		TenantID: "tenant-1",
		Name:     "Big Deal",
		Value:    value,
		Status:   models.DealStatusOpen,
	}
	f.store.PutDeal(deal)

	return deal
}

func (f *interpreterFixture) executionContext(deal *models.Deal) *models.ExecutionContext {
	return &models.ExecutionContext{
		EventType:    "DEAL_CREATED",
		TenantID:     "tenant-1",
		AutomationID: "auto-1",
		Deal:         deal,
	}
}

func noteStep(content string) *models.Step {
	return &models.Step{
		Type:         models.StepTypeAction,
		ActionType:   models.ActionAddNote,
		ActionConfig: map[string]any{"note_content": content},
	}
}

func TestInterpreter_SequentialActions(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(500)

	outcome, err := f.interpreter.Run(t.Context(), []*models.Step{
		noteStep("first"),
		noteStep("second"),
	}, f.executionContext(deal))
	require.NoError(t, err)
	assert.False(t, outcome.Suspended)

	deals := f.store.Deals("tenant-1")
	require.Len(t, deals, 1)
	require.Len(t, deals[0].Notes, 2)
	assert.Equal(t, "first", deals[0].Notes[0].Content)
	assert.Equal(t, "second", deals[0].Notes[1].Content)
}

func TestInterpreter_ConditionRouting(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(1500)

	steps := []*models.Step{
		noteStep("before"),
		{
			Type: models.StepTypeCondition,
			Condition: &models.Condition{
				Field:    models.FieldDealValue,
				Operator: models.OperatorGreaterThan,
				Value:    1000.0,
			},
			OnTrue:  []*models.Step{noteStep("big deal")},
			OnFalse: []*models.Step{noteStep("small deal")},
		},
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	assert.False(t, outcome.Suspended)

	notes := f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 2)
	assert.Equal(t, "before", notes[0].Content)
	assert.Equal(t, "big deal", notes[1].Content)
}

func TestInterpreter_WaitSuspendsWithTail(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(500)

	steps := []*models.Step{
		noteStep("executed"),
		{
			Type:       models.StepTypeAction,
			ActionType: models.ActionWait,
			ActionConfig: map[string]any{
				"wait_duration": 3.0,
				"wait_unit":     "DAYS",
			},
		},
		noteStep("after wait"),
		noteStep("last"),
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	require.True(t, outcome.Suspended)

	continuation := outcome.Continuation
	require.NotNil(t, continuation)
	assert.Equal(t, "tenant-1", continuation.TenantID)
	assert.Equal(t, "deal-1", continuation.DealID)
	assert.Equal(t, "auto-1", continuation.AutomationID)
	require.Len(t, continuation.RemainingSteps, 2)
	require.NotNil(t, continuation.ExecuteAt)
	assert.Equal(t, f.clock.AddDate(0, 0, 3), *continuation.ExecuteAt)

	// steps before the WAIT ran, steps after it did not
	notes := f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "executed", notes[0].Content)

	// resuming executes exactly the remaining steps
	taken, err := f.continuations.Take(t.Context(), continuation.ID)
	require.NoError(t, err)

	outcome, err = f.interpreter.Run(t.Context(), taken.RemainingSteps, f.executionContext(deal))
	require.NoError(t, err)
	assert.False(t, outcome.Suspended)

	notes = f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 3)
	assert.Equal(t, "after wait", notes[1].Content)
	assert.Equal(t, "last", notes[2].Content)
}

func TestInterpreter_WaitAsLastStepDoesNotSuspend(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(500)

	steps := []*models.Step{
		noteStep("only"),
		{
			Type:       models.StepTypeAction,
			ActionType: models.ActionWait,
			ActionConfig: map[string]any{
				"wait_duration": 1.0,
				"wait_unit":     "DAYS",
			},
		},
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	assert.False(t, outcome.Suspended)

	open, err := f.continuations.ListForDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestInterpreter_BranchSuspensionIsLocalToBranch(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(1500)

	steps := []*models.Step{
		{
			Type: models.StepTypeCondition,
			Condition: &models.Condition{
				Field:    models.FieldDealValue,
				Operator: models.OperatorGreaterThan,
				Value:    1000.0,
			},
			OnTrue: []*models.Step{
				{
					Type:       models.StepTypeAction,
					ActionType: models.ActionWait,
					ActionConfig: map[string]any{
						"wait_duration": 1.0,
						"wait_unit":     "HOURS",
					},
				},
				noteStep("branch tail"),
			},
		},
		noteStep("after condition"),
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	require.True(t, outcome.Suspended)

	// the continuation carries the branch tail only
	require.Len(t, outcome.Continuation.RemainingSteps, 1)
	assert.Equal(t, "branch tail", outcome.Continuation.RemainingSteps[0].ActionConfig["note_content"])

	// the steps after the condition ran immediately; only the branch tail
	// waits on the continuation
	notes := f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "after condition", notes[0].Content)

	// resuming executes the branch tail
	taken, err := f.continuations.Take(t.Context(), outcome.Continuation.ID)
	require.NoError(t, err)

	_, err = f.interpreter.Run(t.Context(), taken.RemainingSteps, f.executionContext(deal))
	require.NoError(t, err)

	notes = f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 2)
	assert.Equal(t, "branch tail", notes[1].Content)
}

func TestInterpreter_OuterWaitAfterBranchSuspension(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(1500)

	steps := []*models.Step{
		{
			Type: models.StepTypeCondition,
			Condition: &models.Condition{
				Field:    models.FieldDealValue,
				Operator: models.OperatorGreaterThan,
				Value:    1000.0,
			},
			OnTrue: []*models.Step{
				{
					Type:       models.StepTypeAction,
					ActionType: models.ActionWait,
					ActionConfig: map[string]any{
						"wait_duration": 1.0,
						"wait_unit":     "HOURS",
					},
				},
				noteStep("branch tail"),
			},
		},
		{
			Type:       models.StepTypeAction,
			ActionType: models.ActionWait,
			ActionConfig: map[string]any{
				"wait_duration": 2.0,
				"wait_unit":     "DAYS",
			},
		},
		noteStep("outer tail"),
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	require.True(t, outcome.Suspended)

	// both waits persisted their own continuation
	open, err := f.continuations.ListForDeal(t.Context(), "tenant-1", "deal-1")
	require.NoError(t, err)
	require.Len(t, open, 2)

	contents := make([]string, 0, len(open))
	for _, continuation := range open {
		require.Len(t, continuation.RemainingSteps, 1)
		content, _ := continuation.RemainingSteps[0].ConfigString("note_content")
		contents = append(contents, content)
	}

	assert.ElementsMatch(t, []string{"branch tail", "outer tail"}, contents)
}

func TestInterpreter_WaitForConditionSuspends(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(500)

	steps := []*models.Step{
		{
			Type:       models.StepTypeAction,
			ActionType: models.ActionWait,
			ActionConfig: map[string]any{
				"wait_mode": "CONDITION",
				"wait_condition": map[string]any{
					"field":    "DEAL_STATUS",
					"operator": "EQUALS",
					"value":    "WON",
				},
			},
		},
		noteStep("deal won"),
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	require.True(t, outcome.Suspended)

	continuation := outcome.Continuation
	assert.Nil(t, continuation.ExecuteAt)
	require.NotNil(t, continuation.Condition)
	assert.Equal(t, models.FieldDealStatus, continuation.Condition.Field)
	assert.Equal(t, models.OperatorEquals, continuation.Condition.Operator)
}

func TestInterpreter_MisconfiguredStepSkipsSilently(t *testing.T) {
	f := newInterpreterFixture(t)
	deal := f.seedDeal(500)

	steps := []*models.Step{
		{
			Type:         models.StepTypeAction,
			ActionType:   models.ActionAddNote,
			ActionConfig: map[string]any{},
		},
		noteStep("still runs"),
	}

	outcome, err := f.interpreter.Run(t.Context(), steps, f.executionContext(deal))
	require.NoError(t, err)
	assert.False(t, outcome.Suspended)

	notes := f.store.Deals("tenant-1")[0].Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "still runs", notes[0].Content)
}
