// Package schedule implements the shop's scheduling engine: the task and
// order model, per-worker availability search, the full-reschedule pass
// and the task lifecycle state machine. All functions here are pure over
// explicit snapshots; serialization of passes is the caller's job.
package schedule

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusDone    Status = "done"
)

// Order is a customer job: one vehicle, one priority, an ordered chain
// of tasks. The engine only reads orders.
type Order struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Priority is ordinal, lower = more urgent (1..5 in the UI).
	Priority   int       `json:"priority"`
	AcceptedAt time.Time `json:"accepted_at"`
	Delivered  bool      `json:"delivered,omitempty"`
}

// Task is a single unit of work of a catalog type belonging to one order.
type Task struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Type    string `json:"type"`
	// Worker is empty until the scheduler assigns one.
	Worker string `json:"worker,omitempty"`
	Status Status `json:"status"`
	// ScheduledStart is zero until the scheduler commits a start.
	ScheduledStart time.Time `json:"scheduled_start,omitempty"`
	// Estimated is the work-time budget from the catalog.
	Estimated time.Duration `json:"estimated"`
	// Worked accumulates wall-clock time spent while the task was active.
	Worked time.Duration `json:"worked"`
	// ActiveSince is set while the task is active and zero otherwise.
	ActiveSince time.Time `json:"active_since,omitempty"`
	// CompletedAt is set exactly once, by the finish transition.
	CompletedAt time.Time `json:"completed_at,omitempty"`
	// PrerequisiteID links the previous task of the same order's
	// production chain, if any.
	PrerequisiteID string `json:"prerequisite_id,omitempty"`
}

// Fixed reports whether the task has committed resource usage the
// scheduler must not move (it is being worked on, or paused mid-work).
func (t Task) Fixed() bool {
	return t.Status == StatusActive || t.Status == StatusPaused
}
