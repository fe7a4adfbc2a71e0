package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
)

func monday(hour int) time.Time {
	return time.Date(2024, 4, 8, hour, 0, 0, 0, time.UTC)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestApp(t *testing.T) (*App, *testClock) {
	t.Helper()
	clock := &testClock{now: monday(7)}
	app, err := NewApp(t.TempDir(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app, clock
}

func pressKey(t *testing.T, app *App, key string) *App {
	t.Helper()
	var msg tea.Msg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	model, _ := app.Update(msg)
	next, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return next
}

func TestNewOrderFlowSchedulesTasks(t *testing.T) {
	app, _ := newTestApp(t)

	// "New Order" is the first menu entry.
	app = pressKey(t, app, "enter")
	if app.state != stateNewOrder {
		t.Fatalf("state = %d, want new-order form", app.state)
	}

	app.nameInput.SetValue("Fiat Panda")
	app = pressKey(t, app, "1") // Smontaggio e rimontaggio parti
	app = pressKey(t, app, "6") // Diagnostica
	app = pressKey(t, app, "6") // toggled back off
	app = pressKey(t, app, "4") // Verniciatura
	app = pressKey(t, app, "+")
	if app.priority != 4 {
		t.Fatalf("priority = %d, want 4", app.priority)
	}
	app = pressKey(t, app, "enter")

	if app.state != stateMainMenu {
		t.Fatalf("submit should return to main menu, state = %d", app.state)
	}
	if len(app.snap.Orders) != 1 || len(app.snap.Tasks) != 2 {
		t.Fatalf("snapshot has %d orders / %d tasks", len(app.snap.Orders), len(app.snap.Tasks))
	}
	for _, task := range app.snap.Tasks {
		if task.Worker == "" || task.ScheduledStart.IsZero() {
			t.Fatalf("task %s not scheduled: %+v", task.ID, task)
		}
	}
}

func TestNewOrderRejectionStaysOnForm(t *testing.T) {
	app, _ := newTestApp(t)
	app = pressKey(t, app, "enter")
	// No name, no tasks.
	app = pressKey(t, app, "enter")
	if app.state != stateNewOrder {
		t.Fatalf("rejected order should keep the form open")
	}
	if app.statusMsg == "" {
		t.Fatalf("expected a rejection message")
	}
}

func TestConsoleLifecycle(t *testing.T) {
	app, clock := newTestApp(t)

	snap, err := app.engine.SubmitOrder(app.snap, "Golf", 2, []string{"Diagnostica"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	app.snap = snap
	worker := snap.Tasks[0].Worker

	app.state = stateConsole
	app.consoleWorker = worker
	app.refreshConsoleTasks()
	if len(app.consoleTasks) != 1 {
		t.Fatalf("console shows %d tasks, want 1", len(app.consoleTasks))
	}

	clock.now = monday(8)
	app = pressKey(t, app, "s")
	if got := app.snap.Tasks[0].Status; got != schedule.StatusActive {
		t.Fatalf("status after start = %s", got)
	}

	clock.now = monday(9)
	app = pressKey(t, app, "f")
	if got := app.snap.Tasks[0].Status; got != schedule.StatusDone {
		t.Fatalf("status after finish = %s", got)
	}
	// One working hour against a two-hour estimate raises the score.
	if got := app.engine.Score(worker, "Diagnostica"); got <= 50 {
		t.Fatalf("score after early finish = %v", got)
	}
}

func TestEscReturnsToMainMenu(t *testing.T) {
	app, _ := newTestApp(t)
	app.state = stateExperience
	app = pressKey(t, app, "esc")
	if app.state != stateMainMenu {
		t.Fatalf("esc should return to the main menu")
	}
}

func TestBoardRendering(t *testing.T) {
	app, clock := newTestApp(t)
	snap, err := app.engine.SubmitOrder(app.snap, "Punto", 1, []string{"Verniciatura"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	board := RenderBoard(app.config.Catalog, snap, clock.Now())
	for _, want := range []string{"Punto", "priority 1", "Verniciatura", snap.Tasks[0].Worker} {
		if !strings.Contains(board, want) {
			t.Fatalf("board missing %q:\n%s", want, board)
		}
	}

	empty := RenderBoard(app.config.Catalog, app.snap, clock.Now())
	if !strings.Contains(empty, "No vehicles") {
		t.Fatalf("empty board message missing:\n%s", empty)
	}
}

func TestTaskProgress(t *testing.T) {
	now := monday(10)
	base := schedule.Task{Estimated: 4 * time.Hour}

	done := base
	done.Status = schedule.StatusDone
	if got := TaskProgress(done, now); got != 100 {
		t.Fatalf("done progress = %d", got)
	}

	active := base
	active.Status = schedule.StatusActive
	active.ActiveSince = monday(8)
	if got := TaskProgress(active, now); got != 50 {
		t.Fatalf("active progress = %d, want 50", got)
	}

	paused := base
	paused.Status = schedule.StatusPaused
	paused.Worked = time.Hour
	if got := TaskProgress(paused, now); got != 25 {
		t.Fatalf("paused progress = %d, want 25", got)
	}

	overrun := active
	overrun.ActiveSince = monday(0)
	if got := TaskProgress(overrun, now); got != 99 {
		t.Fatalf("overrun progress = %d, want 99", got)
	}
}

func TestExperienceRendering(t *testing.T) {
	app, _ := newTestApp(t)
	if err := app.engine.SetScore(app.snap, "Giulia", "Verniciatura", 80); err != nil {
		t.Fatalf("set score: %v", err)
	}
	out := RenderExperience(app.config.Catalog, app.engine)
	if !strings.Contains(out, "Giulia") || !strings.Contains(out, "80.0") {
		t.Fatalf("experience table missing override:\n%s", out)
	}
}
