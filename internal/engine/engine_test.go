package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/igorsilvi73/SMART-REPAIR/internal/config"
	"github.com/igorsilvi73/SMART-REPAIR/internal/proficiency"
	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
	"github.com/igorsilvi73/SMART-REPAIR/internal/store"
)

// monday 2024-04-08 is a Monday.
func monday(hour int) time.Time {
	return time.Date(2024, 4, 8, hour, 0, 0, 0, time.UTC)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return monday(7) }),
		WithIDGenerator(sequentialIDs()),
	}
	eng, err := New(config.DefaultCatalog(), proficiency.NewModel(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func tasksOfOrder(snap Snapshot, orderID string) []schedule.Task {
	var out []schedule.Task
	for _, task := range snap.Tasks {
		if task.OrderID == orderID {
			out = append(out, task)
		}
	}
	return out
}

func TestSubmitOrderCreatesChainedTasks(t *testing.T) {
	eng := newTestEngine(t)

	// Selection order is scrambled on purpose.
	snap, err := eng.SubmitOrder(Snapshot{}, "Fiat Panda", 2, []string{
		"Verniciatura",
		"Smontaggio e rimontaggio parti",
		"Collaudo e finitura",
	})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if len(snap.Orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(snap.Orders))
	}
	order := snap.Orders[0]
	if order.Name != "Fiat Panda" || order.Priority != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.AcceptedAt.Equal(monday(7)) {
		t.Fatalf("AcceptedAt = %v, want %v", order.AcceptedAt, monday(7))
	}

	tasks := tasksOfOrder(snap, order.ID)
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	wantSequence := []string{"Smontaggio e rimontaggio parti", "Verniciatura", "Collaudo e finitura"}
	byPrereq := map[string]schedule.Task{}
	for _, task := range tasks {
		byPrereq[task.PrerequisiteID] = task
	}
	prev := ""
	for _, wantType := range wantSequence {
		task, ok := byPrereq[prev]
		if !ok {
			t.Fatalf("no task chained after %q", prev)
		}
		if task.Type != wantType {
			t.Fatalf("chain position for %q holds %q", wantType, task.Type)
		}
		if task.Worker == "" || task.ScheduledStart.IsZero() {
			t.Fatalf("task %s not scheduled: %+v", task.ID, task)
		}
		prev = task.ID
	}
	first := byPrereq[""]
	if !first.ScheduledStart.Equal(monday(8)) {
		t.Fatalf("first task starts %v, want %v", first.ScheduledStart, monday(8))
	}
}

func TestSubmitOrderValidation(t *testing.T) {
	eng := newTestEngine(t)

	cases := []struct {
		name     string
		order    string
		priority int
		types    []string
	}{
		{"empty name", "  ", 3, []string{"Diagnostica"}},
		{"priority too low", "Panda", 0, []string{"Diagnostica"}},
		{"priority too high", "Panda", 6, []string{"Diagnostica"}},
		{"no types", "Panda", 3, nil},
		{"unknown type", "Panda", 3, []string{"Tagliando"}},
	}
	for _, tc := range cases {
		if _, err := eng.SubmitOrder(Snapshot{}, tc.order, tc.priority, tc.types); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestRemoveOrderDropsTasksAndReschedules(t *testing.T) {
	eng := newTestEngine(t)

	snap, err := eng.SubmitOrder(Snapshot{}, "Panda", 1, []string{"Diagnostica"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	snap, err = eng.SubmitOrder(snap, "Golf", 2, []string{"Diagnostica"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	removed := snap.Orders[0].ID
	snap, err = eng.RemoveOrder(snap, removed)
	if err != nil {
		t.Fatalf("RemoveOrder: %v", err)
	}
	if len(snap.Orders) != 1 || len(snap.Tasks) != 1 {
		t.Fatalf("got %d orders / %d tasks after removal", len(snap.Orders), len(snap.Tasks))
	}
	if snap.Tasks[0].OrderID == removed {
		t.Fatalf("task of removed order survived")
	}
	if _, err := eng.RemoveOrder(snap, "no-such-order"); err == nil {
		t.Fatalf("expected error for unknown order")
	}
}

func TestLifecycleFeedsProficiency(t *testing.T) {
	now := monday(8)
	eng := newTestEngine(t, WithClock(func() time.Time { return now }))

	snap, err := eng.SubmitOrder(Snapshot{}, "Panda", 3, []string{"Smontaggio e rimontaggio parti"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	task := snap.Tasks[0]

	snap, resched, err := eng.ApplyLifecycleAction(snap, task.ID, schedule.ActionStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resched {
		t.Fatalf("start should not request a reschedule")
	}

	// Finish after three working hours against a four-hour estimate.
	now = monday(11)
	snap, resched, err = eng.ApplyLifecycleAction(snap, task.ID, schedule.ActionFinish)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !resched {
		t.Fatalf("finish should request a reschedule")
	}
	if snap.Tasks[0].Status != schedule.StatusDone {
		t.Fatalf("task status = %s, want done", snap.Tasks[0].Status)
	}

	got := eng.Score(task.Worker, task.Type)
	if got != 52.5 {
		t.Fatalf("score after early finish = %v, want 52.5", got)
	}
}

func TestFailedPassLeavesSnapshotUntouched(t *testing.T) {
	cat := config.DefaultCatalog()
	cat.Eligibility = map[string][]string{}
	for _, name := range cat.TypeNames() {
		cat.Eligibility[name] = cat.Workers
	}
	// Nobody may touch paint work.
	cat.Eligibility["Verniciatura"] = []string{}

	eng, err := New(cat, proficiency.NewModel(),
		WithClock(func() time.Time { return monday(7) }),
		WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap, err := eng.SubmitOrder(Snapshot{}, "Panda", 3, []string{"Diagnostica"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	_, err = eng.SubmitOrder(snap, "Golf", 1, []string{"Verniciatura"})
	var neErr *schedule.NoEligibleWorkerError
	if !errors.As(err, &neErr) {
		t.Fatalf("expected NoEligibleWorkerError, got %v", err)
	}
	// The caller keeps using the old snapshot, which is still coherent.
	if len(snap.Orders) != 1 || len(snap.Tasks) != 1 {
		t.Fatalf("previous snapshot mutated: %+v", snap)
	}
	if _, err := eng.Recompute(snap); err != nil {
		t.Fatalf("previous snapshot no longer schedulable: %v", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	now := monday(8)
	eng := newTestEngine(t, WithClock(func() time.Time { return now }))

	snap, err := eng.SubmitOrder(Snapshot{}, "Panda", 3, []string{"Diagnostica"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	orderID := snap.Orders[0].ID

	if _, err := eng.MarkDelivered(snap, orderID); err == nil {
		t.Fatalf("delivery with waiting tasks should fail")
	}

	snap, _, err = eng.ApplyLifecycleAction(snap, snap.Tasks[0].ID, schedule.ActionStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	now = monday(10)
	snap, _, err = eng.ApplyLifecycleAction(snap, snap.Tasks[0].ID, schedule.ActionFinish)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	snap, err = eng.MarkDelivered(snap, orderID)
	if err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if !snap.Orders[0].Delivered {
		t.Fatalf("order not flagged delivered")
	}
	if _, err := eng.MarkDelivered(snap, "no-such-order"); err == nil {
		t.Fatalf("expected error for unknown order")
	}
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	repo := store.NewRepository(t.TempDir())

	now := monday(8)
	eng := newTestEngine(t,
		WithClock(func() time.Time { return now }),
		WithStateStore(repo))

	snap, err := eng.SubmitOrder(Snapshot{}, "Panda", 3, []string{"Diagnostica", "Collaudo e finitura"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	first := snap.Tasks[0]
	snap, _, err = eng.ApplyLifecycleAction(snap, first.ID, schedule.ActionStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	now = monday(9)
	if _, _, err := eng.ApplyLifecycleAction(snap, first.ID, schedule.ActionFinish); err != nil {
		t.Fatalf("finish: %v", err)
	}

	scores := proficiency.NewModel()
	revived, err := New(config.DefaultCatalog(), scores, WithStateStore(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	loaded, err := revived.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Orders) != 1 || len(loaded.Tasks) != 2 {
		t.Fatalf("loaded %d orders / %d tasks", len(loaded.Orders), len(loaded.Tasks))
	}
	if got := revived.Score(first.Worker, first.Type); got <= proficiency.BaseScore {
		t.Fatalf("score not restored: %v", got)
	}
}

func TestLoadWithoutStoreOrState(t *testing.T) {
	eng := newTestEngine(t)
	snap, err := eng.Load()
	if err != nil {
		t.Fatalf("Load without store: %v", err)
	}
	if len(snap.Orders) != 0 || len(snap.Tasks) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	repo := store.NewRepository(t.TempDir())
	eng = newTestEngine(t, WithStateStore(repo))
	if _, err := eng.Load(); err != nil {
		t.Fatalf("Load with empty store: %v", err)
	}
}

func TestSetScoreValidatesType(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetScore(Snapshot{}, "Luca", "Tagliando", 70); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if err := eng.SetScore(Snapshot{}, "Luca", "Verniciatura", 70); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	if got := eng.Score("Luca", "Verniciatura"); got != 70 {
		t.Fatalf("score = %v, want 70", got)
	}
}
