package schedule

import (
	"fmt"
	"time"
)

// NoEligibleWorkerError reports a task type with an empty eligible-worker
// set. This is a catalog configuration defect, so a reschedule pass that
// hits it fails as a whole and the previous schedule stays in force.
type NoEligibleWorkerError struct {
	TaskID   string
	TaskType string
}

func (e *NoEligibleWorkerError) Error() string {
	return fmt.Sprintf("schedule: no eligible worker for task %s (type %q)", e.TaskID, e.TaskType)
}

// InvalidTransitionError reports a lifecycle action attempted from an
// incompatible state. The task is left unchanged.
type InvalidTransitionError struct {
	TaskID string
	From   Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("schedule: cannot %s task %s from state %q", e.Action, e.TaskID, e.From)
}

// InvalidDurationError reports a non-positive estimated duration. The
// offending task is skipped by the pass rather than corrupting calendar
// arithmetic for everyone else.
type InvalidDurationError struct {
	TaskID    string
	Estimated time.Duration
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("schedule: task %s has non-positive estimated duration %v", e.TaskID, e.Estimated)
}
