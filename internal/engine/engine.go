// Package engine is the serialized facade over the scheduling core. It
// owns the mutex that keeps reschedule passes and lifecycle actions from
// interleaving, turns order intake into prerequisite-chained tasks, and
// routes completion feedback into the proficiency model. The engine
// holds no schedule state of its own: every operation takes a snapshot
// and returns a new one, and a failed pass leaves the caller's snapshot
// in force.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/igorsilvi73/SMART-REPAIR/internal/config"
	"github.com/igorsilvi73/SMART-REPAIR/internal/logbook"
	"github.com/igorsilvi73/SMART-REPAIR/internal/proficiency"
	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
	"github.com/igorsilvi73/SMART-REPAIR/internal/store"
)

const (
	// MinPriority is the most urgent order priority.
	MinPriority = 1
	// MaxPriority is the least urgent order priority.
	MaxPriority = 5
)

// Snapshot is the complete schedule state an operation works on.
type Snapshot struct {
	Orders []schedule.Order
	Tasks  []schedule.Task
}

// Engine coordinates the scheduler, the lifecycle machine and the
// proficiency model behind a single lock.
type Engine struct {
	mu      sync.Mutex
	catalog config.Catalog
	scores  *proficiency.Model
	log     *logbook.Logbook
	repo    store.StateStore
	clock   func() time.Time
	newID   func() string
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogbook routes pass diagnostics to the given logbook.
func WithLogbook(log *logbook.Logbook) Option {
	return func(e *Engine) { e.log = log }
}

// WithStateStore persists every successful mutation to the store.
func WithStateStore(repo store.StateStore) Option {
	return func(e *Engine) { e.repo = repo }
}

// WithIDGenerator overrides order/task ID generation (for tests).
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New wires an engine to the shop catalog and proficiency model.
func New(catalog config.Catalog, scores *proficiency.Model, opts ...Option) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if scores == nil {
		return nil, fmt.Errorf("engine: proficiency model is required")
	}
	e := &Engine{
		catalog: catalog,
		scores:  scores,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Load restores the last persisted snapshot, if any, and primes the
// proficiency model from it. Without a state store (or before the first
// save) it returns an empty snapshot.
func (e *Engine) Load() (Snapshot, error) {
	if e.repo == nil {
		return Snapshot{}, nil
	}
	state, err := e.repo.Load()
	if err != nil {
		if errors.Is(err, store.ErrStateNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("engine: load state: %w", err)
	}
	e.scores.Restore(state.Scores)
	return Snapshot{Orders: state.Orders, Tasks: state.Tasks}, nil
}

// Recompute runs a full-reschedule pass over the snapshot. On success
// the returned snapshot replaces the input atomically from the caller's
// perspective; on failure the input remains the schedule of record.
func (e *Engine) Recompute(snap Snapshot) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked(snap)
}

// SubmitOrder accepts a new vehicle: it creates the order, one task per
// selected catalog type chained in canonical sequence, and runs a
// reschedule pass over the grown task set.
func (e *Engine) SubmitOrder(snap Snapshot, name string, priority int, taskTypes []string) (Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Snapshot{}, fmt.Errorf("engine: order name is required")
	}
	if priority < MinPriority || priority > MaxPriority {
		return Snapshot{}, fmt.Errorf("engine: priority %d outside [%d,%d]", priority, MinPriority, MaxPriority)
	}
	selected := make(map[string]bool, len(taskTypes))
	for _, taskType := range taskTypes {
		if e.catalog.TypePosition(taskType) == -1 {
			return Snapshot{}, fmt.Errorf("engine: unknown task type %q", taskType)
		}
		selected[taskType] = true
	}
	if len(selected) == 0 {
		return Snapshot{}, fmt.Errorf("engine: at least one task type is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	order := schedule.Order{
		ID:         e.newID(),
		Name:       name,
		Priority:   priority,
		AcceptedAt: e.clock(),
	}

	next := Snapshot{
		Orders: append(copyOrders(snap.Orders), order),
		Tasks:  copyTasks(snap.Tasks),
	}
	// Walk the catalog sequence so tasks are created, and chained, in
	// canonical production order regardless of selection order.
	prevID := ""
	for _, taskType := range e.catalog.TypeNames() {
		if !selected[taskType] {
			continue
		}
		estimated, _ := e.catalog.Duration(taskType)
		task := schedule.Task{
			ID:             e.newID(),
			OrderID:        order.ID,
			Type:           taskType,
			Status:         schedule.StatusWaiting,
			Estimated:      estimated,
			PrerequisiteID: prevID,
		}
		next.Tasks = append(next.Tasks, task)
		prevID = task.ID
	}

	e.log.Info("order %s (%s, priority %d) accepted with %d tasks", order.ID, order.Name, order.Priority, len(selected))
	return e.recomputeLocked(next)
}

// RemoveOrder drops an order and all of its tasks, then reschedules the
// remaining work.
func (e *Engine) RemoveOrder(snap Snapshot, orderID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := Snapshot{}
	found := false
	for _, o := range snap.Orders {
		if o.ID == orderID {
			found = true
			continue
		}
		next.Orders = append(next.Orders, o)
	}
	if !found {
		return Snapshot{}, fmt.Errorf("engine: unknown order %s", orderID)
	}
	for _, t := range snap.Tasks {
		if t.OrderID == orderID {
			continue
		}
		next.Tasks = append(next.Tasks, t)
	}
	e.log.Info("order %s removed", orderID)
	return e.recomputeLocked(next)
}

// MarkDelivered flags an order as handed back to the customer. Every
// task of the order must be done first.
func (e *Engine) MarkDelivered(snap Snapshot, orderID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range snap.Tasks {
		if t.OrderID == orderID && t.Status != schedule.StatusDone {
			return Snapshot{}, fmt.Errorf("engine: order %s has unfinished task %s", orderID, t.ID)
		}
	}
	next := Snapshot{Orders: copyOrders(snap.Orders), Tasks: copyTasks(snap.Tasks)}
	found := false
	for i := range next.Orders {
		if next.Orders[i].ID == orderID {
			next.Orders[i].Delivered = true
			found = true
			break
		}
	}
	if !found {
		return Snapshot{}, fmt.Errorf("engine: unknown order %s", orderID)
	}
	e.log.Info("order %s delivered", orderID)
	if err := e.persist(next); err != nil {
		return Snapshot{}, err
	}
	return next, nil
}

// ApplyLifecycleAction runs one start/pause/finish transition. A finish
// feeds the proficiency model. The returned flag tells the caller a
// reschedule pass is due; the engine never runs one behind the caller's
// back.
func (e *Engine) ApplyLifecycleAction(snap Snapshot, taskID string, action schedule.Action) (Snapshot, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := schedule.ApplyAction(snap.Tasks, taskID, action, e.clock())
	if err != nil {
		return Snapshot{}, false, err
	}
	if result.Patch != nil {
		p := result.Patch
		e.scores.ApplyCompletionFeedback(p.Worker, p.TaskType, p.Estimated, p.Actual)
		e.log.Info("task %s finished by %s (%s): worked %v of %v estimated",
			taskID, p.Worker, p.TaskType, p.Actual, p.Estimated)
	} else {
		e.log.Info("task %s: %s", taskID, action)
	}

	next := Snapshot{Orders: copyOrders(snap.Orders), Tasks: result.Tasks}
	if err := e.persist(next); err != nil {
		return Snapshot{}, false, err
	}
	return next, result.ShouldReschedule, nil
}

// Score returns the proficiency score for the worker and task type.
func (e *Engine) Score(worker, taskType string) float64 {
	return e.scores.Score(worker, taskType)
}

// SetScore applies a supervisor override, then persists the snapshot so
// the new score survives a restart.
func (e *Engine) SetScore(snap Snapshot, worker, taskType string, value float64) error {
	if e.catalog.TypePosition(taskType) == -1 {
		return fmt.Errorf("engine: unknown task type %q", taskType)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scores.Set(worker, taskType, value)
	return e.persist(snap)
}

// Catalog exposes the shop catalog the engine was built with.
func (e *Engine) Catalog() config.Catalog {
	return e.catalog
}

func (e *Engine) recomputeLocked(snap Snapshot) (Snapshot, error) {
	result, err := schedule.Recompute(schedule.RecomputeRequest{
		Tasks:   snap.Tasks,
		Orders:  snap.Orders,
		Catalog: e.catalog,
		Scores:  e.scores,
		Log:     e.log,
	})
	if err != nil {
		e.log.Error("pass failed, previous schedule retained: %v", err)
		return Snapshot{}, err
	}
	e.log.Info("pass succeeded: %d tasks scheduled, %d skipped", result.Scheduled, len(result.Skipped))

	next := Snapshot{Orders: copyOrders(snap.Orders), Tasks: result.Tasks}
	sortSnapshot(&next)
	if err := e.persist(next); err != nil {
		return Snapshot{}, err
	}
	return next, nil
}

func (e *Engine) persist(snap Snapshot) error {
	if e.repo == nil {
		return nil
	}
	state := store.State{
		Orders:    snap.Orders,
		Tasks:     snap.Tasks,
		Scores:    e.scores.Snapshot(),
		UpdatedAt: e.clock(),
	}
	if err := e.repo.Save(state); err != nil {
		return fmt.Errorf("engine: persist state: %w", err)
	}
	return nil
}

// sortSnapshot fixes a stable presentation order: orders by priority
// then acceptance, tasks by order then canonical ID order. Callers must
// not read scheduling semantics out of slice positions, but a stable
// order keeps persisted snapshots diffable.
func sortSnapshot(snap *Snapshot) {
	sort.SliceStable(snap.Orders, func(i, j int) bool {
		if snap.Orders[i].Priority != snap.Orders[j].Priority {
			return snap.Orders[i].Priority < snap.Orders[j].Priority
		}
		return snap.Orders[i].AcceptedAt.Before(snap.Orders[j].AcceptedAt)
	})
	sort.SliceStable(snap.Tasks, func(i, j int) bool {
		if snap.Tasks[i].OrderID != snap.Tasks[j].OrderID {
			return snap.Tasks[i].OrderID < snap.Tasks[j].OrderID
		}
		return snap.Tasks[i].ID < snap.Tasks[j].ID
	})
}

func copyOrders(orders []schedule.Order) []schedule.Order {
	out := make([]schedule.Order, len(orders))
	copy(out, orders)
	return out
}

func copyTasks(tasks []schedule.Task) []schedule.Task {
	out := make([]schedule.Task, len(tasks))
	copy(out, tasks)
	return out
}
