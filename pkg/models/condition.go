package models

import "strconv"

// ConditionField names the deal attribute a condition inspects.
type ConditionField string

const (
	FieldDealValue       ConditionField = "DEAL_VALUE"
	FieldDealStatus      ConditionField = "DEAL_STATUS"
	FieldDealPipeline    ConditionField = "DEAL_PIPELINE"
	FieldDealCustomField ConditionField = "DEAL_CUSTOM_FIELD"
	FieldDealDueDate     ConditionField = "DEAL_DUE_DATE"
)

// ConditionOperator is the comparison applied between the deal attribute
// and the condition value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "EQUALS"
	OperatorNotEquals   ConditionOperator = "NOT_EQUALS"
	OperatorGreaterThan ConditionOperator = "GREATER_THAN"
	OperatorLessThan    ConditionOperator = "LESS_THAN"
	OperatorOnOrAfter   ConditionOperator = "ON_OR_AFTER"
	OperatorOnOrBefore  ConditionOperator = "ON_OR_BEFORE"
)

// Condition is a single predicate over a deal's fields. CustomFieldID is
// set iff Field is DEAL_CUSTOM_FIELD.
type Condition struct {
	Field         ConditionField    `json:"field"    validate:"required"`
	Operator      ConditionOperator `json:"operator" validate:"required"`
	Value         any               `json:"value"`
	CustomFieldID string            `json:"custom_field_id,omitempty"`
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}
