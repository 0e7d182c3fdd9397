package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/database/repository"
)

// Automation actions available on the task queue.
const (
	ActionSendReminder = "send_reminder"
	ActionRefreshUsage = "refresh_usage"
	ActionDraftEmail   = "draft_email"
)

// Actions lists the supported automation actions.
var Actions = []string{ActionSendReminder, ActionRefreshUsage, ActionDraftEmail}

// Automation runs task queue actions. There is no outbound integration; each action
// waits Delay and then marks the task done.
type Automation struct {
	Tasks *repository.TaskRepo
	Delay time.Duration
	Log   *zap.Logger
}

// Run executes action for the task with id taskID. It returns ctx.Err() if cancelled
// before the action completes, leaving the task untouched.
func (a *Automation) Run(ctx context.Context, taskID, action string) error {
	switch action {
	case ActionSendReminder, ActionRefreshUsage, ActionDraftEmail:
	default:
		return fmt.Errorf("automation: unknown action %q", action)
	}
	log := loggerOr(a.Log).With(zap.String("task", taskID), zap.String("action", action))
	log.Info("automation started")

	timer := time.NewTimer(a.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		log.Warn("automation cancelled", zap.Error(ctx.Err()))
		return ctx.Err()
	case <-timer.C:
	}

	if a.Tasks != nil {
		ok, err := a.Tasks.SetStatus(ctx, taskID, "Done")
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if !ok {
			return fmt.Errorf("automation: task %s not found", taskID)
		}
	}
	log.Info("automation finished")
	return nil
}
