package engine

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func evaluatorContext(deal *models.Deal) *models.ExecutionContext {
	return &models.ExecutionContext{
		EventType: "DEAL_CREATED",
		TenantID:  "tenant-1",
		Deal:      deal,
	}
}

func TestEvaluator_DealValueOperators(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", Value: 1500}

	tests := []struct {
		name     string
		operator models.ConditionOperator
		value    any
		expected bool
	}{
		{"greater than below", models.OperatorGreaterThan, 1000.0, true},
		{"greater than above", models.OperatorGreaterThan, 2000.0, false},
		{"greater than equal boundary", models.OperatorGreaterThan, 1500.0, false},
		{"less than", models.OperatorLessThan, 2000.0, true},
		{"equals numeric", models.OperatorEquals, 1500.0, true},
		{"equals string coerced", models.OperatorEquals, "1500", true},
		{"not equals", models.OperatorNotEquals, 1000.0, true},
		{"greater than string threshold", models.OperatorGreaterThan, "1000", true},
		{"non-numeric threshold", models.OperatorGreaterThan, "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			condition := &models.Condition{
				Field:    models.FieldDealValue,
				Operator: tt.operator,
				Value:    tt.value,
			}

			result := evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluator_DealStatusLooseEquality(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", Status: models.DealStatusWon}

	condition := &models.Condition{
		Field:    models.FieldDealStatus,
		Operator: models.OperatorEquals,
		Value:    "WON",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	condition.Value = "LOST"
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}

func TestEvaluator_DealPipelineResolvedThroughStage(t *testing.T) {
	store := crm.NewMemoryStore()
	store.PutStage(&models.Stage{ID: "stage-1", PipelineID: "pipe-1", TenantID: "tenant-1"})

	evaluator := NewEvaluator(store, testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", StageID: "stage-1"}

	condition := &models.Condition{
		Field:    models.FieldDealPipeline,
		Operator: models.OperatorEquals,
		Value:    "pipe-1",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	// Stage lookup miss evaluates to false, not an error.
	deal.StageID = "stage-gone"
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}

func TestEvaluator_CustomField(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{
		ID:           "deal-1",
		TenantID:     "tenant-1",
		CustomFields: map[string]any{"cf-region": "South"},
	}

	condition := &models.Condition{
		Field:         models.FieldDealCustomField,
		Operator:      models.OperatorEquals,
		Value:         "South",
		CustomFieldID: "cf-region",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	condition.CustomFieldID = "cf-missing"
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}

func TestEvaluator_MissingValueMatchesNotEquals(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", StageID: "stage-gone"}

	// An unset custom field is distinct from every value.
	condition := &models.Condition{
		Field:         models.FieldDealCustomField,
		Operator:      models.OperatorNotEquals,
		Value:         "South",
		CustomFieldID: "cf-region",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	// Same for a pipeline that cannot be resolved through the stage.
	condition = &models.Condition{
		Field:    models.FieldDealPipeline,
		Operator: models.OperatorNotEquals,
		Value:    "pipe-1",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	// Ordered operators stay false on a missing value.
	condition = &models.Condition{
		Field:         models.FieldDealCustomField,
		Operator:      models.OperatorGreaterThan,
		Value:         10.0,
		CustomFieldID: "cf-score",
	}
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}

func TestEvaluator_StringFieldsOrderLexicographically(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{
		ID:           "deal-1",
		TenantID:     "tenant-1",
		CustomFields: map[string]any{"cf-tier": "b"},
	}

	condition := &models.Condition{
		Field:         models.FieldDealCustomField,
		Operator:      models.OperatorGreaterThan,
		Value:         "a",
		CustomFieldID: "cf-tier",
	}
	assert.True(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	condition.Operator = models.OperatorLessThan
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}

func TestEvaluator_DueDateDayPrecision(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", DueDate: "2026-09-15"}

	tests := []struct {
		name     string
		operator models.ConditionOperator
		value    string
		expected bool
	}{
		{"equals same day", models.OperatorEquals, "2026-09-15", true},
		{"equals other day", models.OperatorEquals, "2026-09-16", false},
		{"not equals", models.OperatorNotEquals, "2026-09-16", true},
		{"on or after earlier bound", models.OperatorOnOrAfter, "2026-09-01", true},
		{"on or after same day", models.OperatorOnOrAfter, "2026-09-15", true},
		{"on or after later bound", models.OperatorOnOrAfter, "2026-09-16", false},
		{"on or before later bound", models.OperatorOnOrBefore, "2026-09-16", true},
		{"on or before earlier bound", models.OperatorOnOrBefore, "2026-09-14", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			condition := &models.Condition{
				Field:    models.FieldDealDueDate,
				Operator: tt.operator,
				Value:    tt.value,
			}

			result := evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluator_MalformedConditionsAreFalse(t *testing.T) {
	evaluator := NewEvaluator(crm.NewMemoryStore(), testLogger())
	deal := &models.Deal{ID: "deal-1", TenantID: "tenant-1", Value: 100}

	// No deal at all.
	condition := &models.Condition{Field: models.FieldDealValue, Operator: models.OperatorEquals, Value: 100.0}
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(nil)))

	// Unknown field.
	condition = &models.Condition{Field: "DEAL_OWNER", Operator: models.OperatorEquals, Value: "x"}
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	// Unknown operator.
	condition = &models.Condition{Field: models.FieldDealValue, Operator: "MATCHES", Value: 100.0}
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))

	// Unparseable due date.
	condition = &models.Condition{Field: models.FieldDealDueDate, Operator: models.OperatorEquals, Value: "tomorrow"}
	deal.DueDate = "2026-09-15"
	assert.False(t, evaluator.Evaluate(t.Context(), condition, evaluatorContext(deal)))
}
