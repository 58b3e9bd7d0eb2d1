// Package wait implements the WAIT automation action, the only step that
// suspends a run. It computes the resume criterion; persisting the
// continuation with the remaining steps is the interpreter's job because
// only the interpreter knows the untouched tail of the sequence.
package wait

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vendaflow/vendaflow/pkg/models"
	"github.com/vendaflow/vendaflow/pkg/protocol"
)

const (
	ModeDuration  = "DURATION"
	ModeCondition = "CONDITION"

	UnitMinutes = "MINUTES"
	UnitHours   = "HOURS"
	UnitDays    = "DAYS"
)

type Action struct {
	step *models.Step
	now  func() time.Time
}

func (a *Action) Execute(_ context.Context, ectx *models.ExecutionContext, logger *slog.Logger) (protocol.Result, error) {
	mode, _ := a.step.ConfigString("wait_mode")

	if mode == ModeCondition {
		condition := a.parseCondition()
		if condition == nil {
			logger.Warn("WAIT step in condition mode has no condition, skipping")

			return protocol.Continue(), nil
		}

		logger.Info("Automation pausing until condition is met",
			"field", string(condition.Field), "operator", string(condition.Operator))

		return protocol.Result{Signal: protocol.SignalSuspend, ResumeCondition: condition}, nil
	}

	duration, ok := a.step.ConfigNumber("wait_duration")
	if !ok || duration <= 0 {
		// Legacy configs stored the duration under wait_days.
		duration, ok = a.step.ConfigNumber("wait_days")
		if !ok || duration <= 0 {
			logger.Warn("WAIT step has no positive duration, skipping")

			return protocol.Continue(), nil
		}
	}

	unit, _ := a.step.ConfigString("wait_unit")
	executeAt := a.resumeTime(int(duration), unit)

	logger.Info("Automation pausing for duration",
		"duration", int(duration), "unit", unit, "resume_at", executeAt)

	return protocol.Result{Signal: protocol.SignalSuspend, ResumeAt: &executeAt}, nil
}

func (a *Action) resumeTime(duration int, unit string) time.Time {
	now := a.now()

	switch unit {
	case UnitMinutes:
		return now.Add(time.Duration(duration) * time.Minute)
	case UnitHours:
		return now.Add(time.Duration(duration) * time.Hour)
	default:
		return now.AddDate(0, 0, duration)
	}
}

func (a *Action) parseCondition() *models.Condition {
	raw, ok := a.step.ActionConfig["wait_condition"]
	if !ok || raw == nil {
		return nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil
	}

	condition := &models.Condition{}
	if err := json.Unmarshal(encoded, condition); err != nil {
		return nil
	}

	if condition.Field == "" || condition.Operator == "" {
		return nil
	}

	return condition
}
