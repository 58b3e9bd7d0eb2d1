package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/models"
)

// Evaluator resolves condition fields against a deal and applies the
// condition operator. Evaluation never errors: an unknown field or
// operator, a missing deal, or an unparseable date all evaluate to false,
// so a malformed condition routes to the on_false branch instead of
// aborting the run.
type Evaluator struct {
	store  crm.EntityStore
	logger *slog.Logger
}

func NewEvaluator(store crm.EntityStore, logger *slog.Logger) *Evaluator {
	return &Evaluator{store: store, logger: logger.With("module", "evaluator")}
}

// Evaluate applies the condition to the deal in the execution context.
func (e *Evaluator) Evaluate(ctx context.Context, condition *models.Condition, ectx *models.ExecutionContext) bool {
	if condition == nil || ectx.Deal == nil {
		return false
	}

	if condition.Field == models.FieldDealDueDate {
		return e.evaluateDueDate(condition, ectx.Deal)
	}

	actual, ok := e.resolveField(ctx, condition, ectx)
	if !ok {
		return false
	}

	switch condition.Operator {
	case models.OperatorEquals:
		return looselyEqual(actual, condition.Value)
	case models.OperatorNotEquals:
		return !looselyEqual(actual, condition.Value)
	case models.OperatorGreaterThan:
		cmp, ok := looselyOrdered(actual, condition.Value)

		return ok && cmp > 0
	case models.OperatorLessThan:
		cmp, ok := looselyOrdered(actual, condition.Value)

		return ok && cmp < 0
	default:
		e.logger.Warn("Unknown condition operator", "operator", condition.Operator)

		return false
	}
}

// resolveField extracts the deal attribute named by the condition. The
// second return is false only for an unknown field name. A value that is
// merely absent (unset custom field, missing stage) resolves to nil so the
// equality operators still see it: nil equals nothing, which makes
// NOT_EQUALS against a missing value match.
func (e *Evaluator) resolveField(ctx context.Context, condition *models.Condition, ectx *models.ExecutionContext) (any, bool) {
	deal := ectx.Deal

	switch condition.Field {
	case models.FieldDealValue:
		return deal.Value, true
	case models.FieldDealStatus:
		return string(deal.Status), true
	case models.FieldDealPipeline:
		stage, err := e.store.GetStage(ctx, ectx.TenantID, deal.StageID)
		if err != nil {
			return nil, true
		}

		return stage.PipelineID, true
	case models.FieldDealCustomField:
		if condition.CustomFieldID == "" || deal.CustomFields == nil {
			return nil, true
		}

		return deal.CustomFields[condition.CustomFieldID], true
	default:
		e.logger.Warn("Unknown condition field", "field", condition.Field)

		return nil, false
	}
}

// evaluateDueDate compares calendar dates at day precision. Dates are
// stored as YYYY-MM-DD so parsing yields UTC midnight on both sides and
// EQUALS means "same day".
func (e *Evaluator) evaluateDueDate(condition *models.Condition, deal *models.Deal) bool {
	if deal.DueDate == "" {
		return false
	}

	actual, err := time.Parse(models.DateLayout, deal.DueDate)
	if err != nil {
		return false
	}

	expectedRaw, ok := condition.Value.(string)
	if !ok {
		return false
	}

	expected, err := time.Parse(models.DateLayout, expectedRaw)
	if err != nil {
		return false
	}

	switch condition.Operator {
	case models.OperatorEquals:
		return actual.Equal(expected)
	case models.OperatorNotEquals:
		return !actual.Equal(expected)
	case models.OperatorOnOrAfter:
		return !actual.Before(expected)
	case models.OperatorOnOrBefore:
		return !actual.After(expected)
	default:
		return false
	}
}
