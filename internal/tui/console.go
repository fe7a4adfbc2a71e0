// internal/tui/console.go
//
// Per-operator console: each worker sees their assigned tasks and can
// start, pause and finish them. Finishing feeds the proficiency model
// and triggers a reschedule pass for the remaining work.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
)

func (a *App) updateConsole(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.consoleWorker == "" {
		if msg.String() == "enter" {
			item, ok := a.workerMenu.SelectedItem().(menuItem)
			if !ok {
				return a, nil
			}
			a.consoleWorker = item.title
			a.consoleSelection = 0
			a.refreshConsoleTasks()
			a.statusMsg = "s start · p pause · f finish · Esc back"
			return a, nil
		}
		var cmd tea.Cmd
		a.workerMenu, cmd = a.workerMenu.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "up", "k":
		if a.consoleSelection > 0 {
			a.consoleSelection--
		}
	case "down", "j":
		if a.consoleSelection < len(a.consoleTasks)-1 {
			a.consoleSelection++
		}
	case "s":
		return a.applyConsoleAction(schedule.ActionStart)
	case "p":
		return a.applyConsoleAction(schedule.ActionPause)
	case "f":
		return a.applyConsoleAction(schedule.ActionFinish)
	}
	return a, nil
}

func (a *App) applyConsoleAction(action schedule.Action) (tea.Model, tea.Cmd) {
	if a.consoleSelection >= len(a.consoleTasks) {
		return a, nil
	}
	task := a.consoleTasks[a.consoleSelection]
	next, reschedule, err := a.engine.ApplyLifecycleAction(a.snap, task.ID, action)
	if err != nil {
		a.statusMsg = fmt.Sprintf("%s rejected: %v", action, err)
		return a, nil
	}
	a.snap = next
	a.statusMsg = fmt.Sprintf("%s: %s", task.Type, action)
	if reschedule {
		if recomputed, err := a.engine.Recompute(a.snap); err != nil {
			a.statusMsg = fmt.Sprintf("Reschedule failed, previous schedule kept: %v", err)
		} else {
			a.snap = recomputed
			a.statusMsg = fmt.Sprintf("%s finished, schedule recomputed", task.Type)
		}
	}
	a.refreshConsoleTasks()
	return a, nil
}

// refreshConsoleTasks rebuilds the operator's task list from the
// current snapshot, open work first, in scheduled order.
func (a *App) refreshConsoleTasks() {
	var open, done []schedule.Task
	for _, task := range a.snap.Tasks {
		if task.Worker != a.consoleWorker {
			continue
		}
		if task.Status == schedule.StatusDone {
			done = append(done, task)
		} else {
			open = append(open, task)
		}
	}
	sortByScheduledStart(open)
	a.consoleTasks = append(open, done...)
	if a.consoleSelection >= len(a.consoleTasks) {
		a.consoleSelection = max(0, len(a.consoleTasks)-1)
	}
}

func sortByScheduledStart(tasks []schedule.Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].ScheduledStart.Before(tasks[j-1].ScheduledStart); j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}

func (a *App) renderConsole() string {
	if a.consoleWorker == "" {
		return a.workerMenu.View()
	}
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Operator · %s", a.consoleWorker))
	if len(a.consoleTasks) == 0 {
		return title + "\n\nNo assigned tasks."
	}
	orderNames := map[string]string{}
	for _, order := range a.snap.Orders {
		orderNames[order.ID] = order.Name
	}
	now := a.clock()
	lines := []string{title, ""}
	for i, task := range a.consoleTasks {
		cursor := "  "
		if i == a.consoleSelection {
			cursor = "> "
		}
		start := "unscheduled"
		if !task.ScheduledStart.IsZero() {
			start = task.ScheduledStart.Format(boardTimeLayout)
		}
		line := fmt.Sprintf("%s%-20s %-32s %-18s %-8s %3d%%",
			cursor, orderNames[task.OrderID], task.Type, start, task.Status, TaskProgress(task, now))
		if i == a.consoleSelection {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
