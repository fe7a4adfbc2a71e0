package schedule

import (
	"fmt"
	"time"
)

// Action is a lifecycle command an operator issues against a task.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionFinish Action = "finish"
)

// ProficiencyPatch describes the completion feedback the caller should
// apply to the proficiency model after a finish transition.
type ProficiencyPatch struct {
	Worker    string
	TaskType  string
	Estimated time.Duration
	Actual    time.Duration
}

// LifecycleResult is the outcome of applying one lifecycle action.
type LifecycleResult struct {
	// Tasks is a new slice; the input is never mutated.
	Tasks []Task
	// Patch is non-nil only after a finish transition.
	Patch *ProficiencyPatch
	// ShouldReschedule tells the caller a full-reschedule pass is due.
	ShouldReschedule bool
}

// ApplyAction runs the task state machine for one task:
//
//	waiting -> active -> {paused <-> active} -> done
//
// Worked time accumulates wall-clock elapsed time only while the task is
// active. finish stamps the completion time and hands back the feedback
// patch plus the reschedule signal; the engine never reschedules behind
// the caller's back. Invalid transitions return *InvalidTransitionError
// and leave every task untouched.
func ApplyAction(tasks []Task, taskID string, action Action, now time.Time) (LifecycleResult, error) {
	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return LifecycleResult{}, fmt.Errorf("schedule: unknown task %s", taskID)
	}

	t := tasks[idx]
	result := LifecycleResult{}

	switch action {
	case ActionStart:
		if t.Status != StatusWaiting && t.Status != StatusPaused {
			return LifecycleResult{}, &InvalidTransitionError{TaskID: taskID, From: t.Status, Action: action}
		}
		t.Status = StatusActive
		t.ActiveSince = now

	case ActionPause:
		if t.Status != StatusActive {
			return LifecycleResult{}, &InvalidTransitionError{TaskID: taskID, From: t.Status, Action: action}
		}
		t.Worked += now.Sub(t.ActiveSince)
		t.ActiveSince = time.Time{}
		t.Status = StatusPaused

	case ActionFinish:
		if t.Status != StatusActive && t.Status != StatusPaused {
			return LifecycleResult{}, &InvalidTransitionError{TaskID: taskID, From: t.Status, Action: action}
		}
		if t.Status == StatusActive {
			t.Worked += now.Sub(t.ActiveSince)
		}
		t.ActiveSince = time.Time{}
		t.Status = StatusDone
		t.CompletedAt = now
		result.Patch = &ProficiencyPatch{
			Worker:    t.Worker,
			TaskType:  t.Type,
			Estimated: t.Estimated,
			Actual:    t.Worked,
		}
		result.ShouldReschedule = true

	default:
		return LifecycleResult{}, fmt.Errorf("schedule: unknown action %q", action)
	}

	out := make([]Task, len(tasks))
	copy(out, tasks)
	out[idx] = t
	result.Tasks = out
	return result, nil
}
