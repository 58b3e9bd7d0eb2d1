package models

import "time"

// Continuation is a suspended automation run awaiting resumption. It holds
// the steps that were not yet executed when a WAIT fired, plus exactly one
// resume criterion: an absolute timestamp or a deal condition. A deal may
// have any number of open continuations at once.
type Continuation struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"     validate:"required"`
	DealID         string     `json:"deal_id"       validate:"required"`
	AutomationID   string     `json:"automation_id" validate:"required"`
	RemainingSteps []*Step    `json:"remaining_steps"`
	ExecuteAt      *time.Time `json:"execute_at,omitempty"`
	Condition      *Condition `json:"condition,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsTimeBased reports whether this continuation resumes on a deadline.
func (c *Continuation) IsTimeBased() bool {
	return c.ExecuteAt != nil
}

// IsConditionBased reports whether this continuation resumes when a deal
// mutation satisfies its condition.
func (c *Continuation) IsConditionBased() bool {
	return c.Condition != nil
}

// IsDue reports whether a time-based continuation's deadline has passed.
func (c *Continuation) IsDue(now time.Time) bool {
	return c.ExecuteAt != nil && !c.ExecuteAt.After(now)
}
