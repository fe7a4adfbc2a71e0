package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/igorsilvi73/SMART-REPAIR/internal/calendar"
)

// Catalog is the slice of the shop configuration the scheduler needs:
// the canonical type ordering and the eligibility roster.
type Catalog interface {
	TypePosition(name string) int
	EligibleWorkers(name string) []string
}

// ScoreReader exposes proficiency scores for candidate ranking.
type ScoreReader interface {
	Score(worker, taskType string) float64
}

// Logger is the minimal logging contract for non-fatal pass diagnostics.
type Logger interface {
	Warn(format string, args ...any)
}

// SkipReasonCode enumerates why a task was left unscheduled by a pass.
type SkipReasonCode string

const (
	SkipReasonInvalidDuration SkipReasonCode = "invalid-duration"
)

// SkipReason explains why a task was excluded from scheduling.
type SkipReason struct {
	Reason SkipReasonCode
	Detail string
}

// RecomputeRequest carries the complete snapshot a full-reschedule pass
// works on. The pass never mutates the request.
type RecomputeRequest struct {
	Tasks   []Task
	Orders  []Order
	Catalog Catalog
	Scores  ScoreReader
	// Log receives non-fatal diagnostics (dangling prerequisites, skipped
	// tasks). May be nil.
	Log Logger
}

// RecomputeResult is the outcome of a successful pass.
type RecomputeResult struct {
	// Tasks holds every input task: done tasks unchanged, active/paused
	// tasks with their committed start and worker, waiting tasks with
	// freshly derived assignments.
	Tasks []Task
	// Scheduled counts the waiting tasks that received an assignment.
	Scheduled int
	// Skipped records waiting tasks the pass could not schedule, keyed by
	// task ID.
	Skipped map[string]SkipReason
}

// Recompute re-derives worker assignments and start times for every
// waiting task. Done tasks are returned untouched; active and paused
// tasks keep their committed start and worker and seed the occupancy
// map. The pass is greedy and deterministic: pending tasks are visited
// in (order priority, order acceptance, canonical type position, task
// ID) order and each takes the earliest slot among eligible workers,
// preferring higher proficiency and then lexicographic worker name on
// equal starts.
//
// A task type with no eligible worker fails the whole pass with
// *NoEligibleWorkerError; the caller keeps its previous schedule. A
// non-positive estimated duration skips only the offending task.
func Recompute(req RecomputeRequest) (RecomputeResult, error) {
	if req.Catalog == nil {
		return RecomputeResult{}, fmt.Errorf("schedule: recompute requires a catalog")
	}
	if req.Scores == nil {
		return RecomputeResult{}, fmt.Errorf("schedule: recompute requires a score reader")
	}

	orders := make(map[string]Order, len(req.Orders))
	for _, o := range req.Orders {
		orders[o.ID] = o
	}

	var done, fixed, pending []Task
	for _, t := range req.Tasks {
		switch {
		case t.Status == StatusDone:
			done = append(done, t)
		case t.Fixed():
			fixed = append(fixed, t)
		default:
			pending = append(pending, t)
		}
	}

	// byID tracks the latest committed view of every task so prerequisite
	// ends computed later in the pass see assignments made earlier in it.
	byID := make(map[string]Task, len(req.Tasks))
	for _, t := range req.Tasks {
		byID[t.ID] = t
	}

	avail := NewAvailability()
	for _, t := range fixed {
		if t.ScheduledStart.IsZero() || t.Estimated <= 0 {
			continue
		}
		avail.Commit(t.Worker, Interval{
			Start: t.ScheduledStart,
			End:   calendar.AddWork(t.ScheduledStart, t.Estimated),
		})
	}

	for _, t := range pending {
		if _, ok := orders[t.OrderID]; !ok {
			return RecomputeResult{}, fmt.Errorf("schedule: task %s references unknown order %s", t.ID, t.OrderID)
		}
	}
	sortPending(pending, orders, req.Catalog)

	result := RecomputeResult{Skipped: map[string]SkipReason{}}
	lastEnd := make(map[string]time.Time)

	for i := range pending {
		t := pending[i]
		order := orders[t.OrderID]

		workers := req.Catalog.EligibleWorkers(t.Type)
		if len(workers) == 0 {
			return RecomputeResult{}, &NoEligibleWorkerError{TaskID: t.ID, TaskType: t.Type}
		}
		if t.Estimated <= 0 {
			derr := &InvalidDurationError{TaskID: t.ID, Estimated: t.Estimated}
			warnf(req.Log, "pass: skipping task %s: %v", t.ID, derr)
			result.Skipped[t.ID] = SkipReason{Reason: SkipReasonInvalidDuration, Detail: derr.Error()}
			t.Worker = ""
			t.ScheduledStart = time.Time{}
			pending[i] = t
			byID[t.ID] = t
			continue
		}

		lower := lowerBound(t, order, byID, lastEnd, req.Log)

		best := ""
		var bestStart time.Time
		var bestScore float64
		for _, w := range workers {
			start := FindFreeSlot(lower, t.Estimated, avail.Busy(w))
			score := req.Scores.Score(w, t.Type)
			if best == "" || betterCandidate(start, score, w, bestStart, bestScore, best) {
				best, bestStart, bestScore = w, start, score
			}
		}

		t.Worker = best
		t.ScheduledStart = bestStart
		end := calendar.AddWork(bestStart, t.Estimated)
		avail.Commit(best, Interval{Start: bestStart, End: end})
		if end.After(lastEnd[t.OrderID]) {
			lastEnd[t.OrderID] = end
		}
		pending[i] = t
		byID[t.ID] = t
		result.Scheduled++
	}

	result.Tasks = make([]Task, 0, len(req.Tasks))
	result.Tasks = append(result.Tasks, done...)
	result.Tasks = append(result.Tasks, fixed...)
	result.Tasks = append(result.Tasks, pending...)
	return result, nil
}

// lowerBound derives the earliest instant the task may start: the
// order's calendar-snapped acceptance, the completion (or estimated end)
// of its prerequisite, and the end of the order's previously scheduled
// task in this pass, whichever is latest. A prerequisite reference that
// resolves to no known task is tolerated: the task is treated as
// unblocked and a warning is logged.
func lowerBound(t Task, order Order, byID map[string]Task, lastEnd map[string]time.Time, log Logger) time.Time {
	lower := calendar.NextWorkingInstant(order.AcceptedAt)
	if t.PrerequisiteID != "" {
		pre, ok := byID[t.PrerequisiteID]
		switch {
		case !ok:
			warnf(log, "pass: task %s has dangling prerequisite %s, treating as unblocked", t.ID, t.PrerequisiteID)
		case pre.Status == StatusDone:
			if pre.CompletedAt.After(lower) {
				lower = pre.CompletedAt
			}
		case !pre.ScheduledStart.IsZero():
			if end := calendar.AddWork(pre.ScheduledStart, pre.Estimated); end.After(lower) {
				lower = end
			}
		}
	}
	if end, ok := lastEnd[t.OrderID]; ok && end.After(lower) {
		lower = end
	}
	return lower
}

// betterCandidate ranks (start, score, worker) tuples: earliest start
// wins, then highest score, then lexicographically smallest name.
func betterCandidate(start time.Time, score float64, worker string, bestStart time.Time, bestScore float64, bestWorker string) bool {
	if !start.Equal(bestStart) {
		return start.Before(bestStart)
	}
	if score != bestScore {
		return score > bestScore
	}
	return worker < bestWorker
}

func sortPending(pending []Task, orders map[string]Order, cat Catalog) {
	sort.SliceStable(pending, func(i, j int) bool {
		oi, oj := orders[pending[i].OrderID], orders[pending[j].OrderID]
		if oi.Priority != oj.Priority {
			return oi.Priority < oj.Priority
		}
		if !oi.AcceptedAt.Equal(oj.AcceptedAt) {
			return oi.AcceptedAt.Before(oj.AcceptedAt)
		}
		pi, pj := cat.TypePosition(pending[i].Type), cat.TypePosition(pending[j].Type)
		if pi != pj {
			return pi < pj
		}
		return pending[i].ID < pending[j].ID
	})
}

func warnf(log Logger, format string, args ...any) {
	if log != nil {
		log.Warn(format, args...)
	}
}
