package schedule

import (
	"errors"
	"testing"
	"time"
)

func waitingTask() []Task {
	return []Task{{
		ID: "t1", OrderID: "o1", Type: "Verniciatura", Worker: "Luca",
		Status: StatusWaiting, ScheduledStart: monday(8), Estimated: 4 * time.Hour,
	}}
}

func TestStartFromWaiting(t *testing.T) {
	result, err := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	got := result.Tasks[0]
	if got.Status != StatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}
	if !got.ActiveSince.Equal(monday(8)) {
		t.Fatalf("active since = %v, want %v", got.ActiveSince, monday(8))
	}
	if result.ShouldReschedule {
		t.Fatalf("start must not request a reschedule")
	}
}

func TestPauseAccumulatesWorkedTime(t *testing.T) {
	result, err := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err = ApplyAction(result.Tasks, "t1", ActionPause, monday(10))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	got := result.Tasks[0]
	if got.Status != StatusPaused {
		t.Fatalf("status = %s, want paused", got.Status)
	}
	if got.Worked != 2*time.Hour {
		t.Fatalf("worked = %v, want 2h", got.Worked)
	}
	if !got.ActiveSince.IsZero() {
		t.Fatalf("active since must reset on pause")
	}
}

func TestPausedTimeDoesNotAccumulate(t *testing.T) {
	result, _ := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
	result, _ = ApplyAction(result.Tasks, "t1", ActionPause, monday(9))
	// Resume two hours later; only active segments count.
	result, err := ApplyAction(result.Tasks, "t1", ActionStart, monday(11))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	result, err = ApplyAction(result.Tasks, "t1", ActionFinish, monday(12))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := result.Tasks[0].Worked; got != 2*time.Hour {
		t.Fatalf("worked = %v, want 2h (1h + 1h active segments)", got)
	}
}

func TestFinishFromActiveProducesPatchAndRescheduleSignal(t *testing.T) {
	result, _ := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
	result, err := ApplyAction(result.Tasks, "t1", ActionFinish, monday(11))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	got := result.Tasks[0]
	if got.Status != StatusDone {
		t.Fatalf("status = %s, want done", got.Status)
	}
	if !got.CompletedAt.Equal(monday(11)) {
		t.Fatalf("completed at = %v, want %v", got.CompletedAt, monday(11))
	}
	if !result.ShouldReschedule {
		t.Fatalf("finish must request a reschedule pass")
	}
	if result.Patch == nil {
		t.Fatalf("finish must produce a proficiency patch")
	}
	patch := *result.Patch
	if patch.Worker != "Luca" || patch.TaskType != "Verniciatura" {
		t.Fatalf("patch targets wrong pair: %+v", patch)
	}
	if patch.Estimated != 4*time.Hour || patch.Actual != 3*time.Hour {
		t.Fatalf("patch durations wrong: %+v", patch)
	}
}

func TestFinishFromPaused(t *testing.T) {
	result, _ := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
	result, _ = ApplyAction(result.Tasks, "t1", ActionPause, monday(10))
	result, err := ApplyAction(result.Tasks, "t1", ActionFinish, monday(17))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	// The pause already banked 2h; the paused gap adds nothing.
	if got := result.Tasks[0].Worked; got != 2*time.Hour {
		t.Fatalf("worked = %v, want 2h", got)
	}
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		name   string
		setup  func() []Task
		action Action
	}{
		{"pause waiting", waitingTask, ActionPause},
		{"finish waiting", waitingTask, ActionFinish},
		{"start active", func() []Task {
			r, _ := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
			return r.Tasks
		}, ActionStart},
		{"finish done", func() []Task {
			r, _ := ApplyAction(waitingTask(), "t1", ActionStart, monday(8))
			r, _ = ApplyAction(r.Tasks, "t1", ActionFinish, monday(9))
			return r.Tasks
		}, ActionFinish},
	}
	for _, tc := range cases {
		tasks := tc.setup()
		before := tasks[0]
		_, err := ApplyAction(tasks, "t1", tc.action, monday(10))
		var terr *InvalidTransitionError
		if !errors.As(err, &terr) {
			t.Fatalf("%s: expected InvalidTransitionError, got %v", tc.name, err)
		}
		if tasks[0] != before {
			t.Fatalf("%s: input mutated on invalid transition", tc.name)
		}
	}
}

func TestApplyActionUnknownTask(t *testing.T) {
	if _, err := ApplyAction(waitingTask(), "ghost", ActionStart, monday(8)); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}

func TestApplyActionDoesNotMutateInput(t *testing.T) {
	tasks := waitingTask()
	before := tasks[0]
	result, err := ApplyAction(tasks, "t1", ActionStart, monday(8))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if tasks[0] != before {
		t.Fatalf("input slice mutated")
	}
	if result.Tasks[0].Status != StatusActive {
		t.Fatalf("result not updated")
	}
}
