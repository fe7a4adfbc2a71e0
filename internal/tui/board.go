// internal/tui/board.go
//
// Text rendering for the schedule board and the experience table. The
// CLI reuses these renderers so `smartrepair schedule` prints the same
// board the interactive app shows.

package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/igorsilvi73/SMART-REPAIR/internal/calendar"
	"github.com/igorsilvi73/SMART-REPAIR/internal/config"
	"github.com/igorsilvi73/SMART-REPAIR/internal/engine"
	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
)

const boardTimeLayout = "Mon 02 Jan 15:04"

var (
	orderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	deliveredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// RenderBoard prints every order with its tasks: operator, scheduled
// window, status and progress. Orders come out sorted by priority, then
// acceptance.
func RenderBoard(cat config.Catalog, snap engine.Snapshot, now time.Time) string {
	if len(snap.Orders) == 0 {
		return "No vehicles in the shop. Add an order to populate the board."
	}
	orders := make([]schedule.Order, len(snap.Orders))
	copy(orders, snap.Orders)
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority < orders[j].Priority
		}
		return orders[i].AcceptedAt.Before(orders[j].AcceptedAt)
	})

	tasksByOrder := map[string][]schedule.Task{}
	for _, task := range snap.Tasks {
		tasksByOrder[task.OrderID] = append(tasksByOrder[task.OrderID], task)
	}
	for _, tasks := range tasksByOrder {
		sortTasksByChain(tasks)
	}

	var sections []string
	for _, order := range orders {
		title := fmt.Sprintf("%s  ·  priority %d", order.Name, order.Priority)
		if order.Delivered {
			title = deliveredStyle.Render(title + "  ·  delivered")
		} else {
			title = orderTitleStyle.Render(title)
		}
		lines := []string{title}
		for _, task := range tasksByOrder[order.ID] {
			lines = append(lines, renderTaskLine(cat, task, now))
		}
		if len(tasksByOrder[order.ID]) == 0 {
			lines = append(lines, warnStyle.Render("  (no tasks)"))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func renderTaskLine(cat config.Catalog, task schedule.Task, now time.Time) string {
	window := "unscheduled"
	if !task.ScheduledStart.IsZero() {
		end := calendar.AddWork(task.ScheduledStart, task.Estimated)
		window = fmt.Sprintf("%s → %s (%dh)",
			task.ScheduledStart.Format(boardTimeLayout),
			end.Format(boardTimeLayout),
			int(calendar.CountWork(task.ScheduledStart, end).Hours()))
	}
	worker := task.Worker
	if worker == "" {
		worker = "-"
	}
	return fmt.Sprintf("  %-32s %-12s %-40s %-8s %3d%%",
		task.Type, worker, window, task.Status, TaskProgress(task, now))
}

// TaskProgress reports completion as a percentage of the estimate. Done
// tasks always read 100; only time spent active counts as progress.
func TaskProgress(task schedule.Task, now time.Time) int {
	if task.Status == schedule.StatusDone {
		return 100
	}
	if task.Estimated <= 0 {
		return 0
	}
	elapsed := task.Worked
	if task.Status == schedule.StatusActive && !task.ActiveSince.IsZero() && now.After(task.ActiveSince) {
		elapsed += now.Sub(task.ActiveSince)
	}
	pct := int(float64(elapsed) / float64(task.Estimated) * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// RenderExperience prints the worker-by-type score matrix.
func RenderExperience(cat config.Catalog, scores interface {
	Score(worker, taskType string) float64
}) string {
	types := cat.TypeNames()
	header := fmt.Sprintf("%-12s", "Operator")
	for _, taskType := range types {
		header += fmt.Sprintf(" %8s", abbreviate(taskType, 8))
	}
	rows := []string{orderTitleStyle.Render(header)}
	for _, worker := range cat.Workers {
		row := fmt.Sprintf("%-12s", worker)
		for _, taskType := range types {
			row += fmt.Sprintf(" %8.1f", scores.Score(worker, taskType))
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// sortTasksByChain orders an order's tasks by prerequisite links, so
// the board reads top to bottom in execution order. Tasks with broken
// links keep their relative position at the end.
func sortTasksByChain(tasks []schedule.Task) {
	byPrereq := map[string]int{}
	for i, task := range tasks {
		byPrereq[task.PrerequisiteID] = i
	}
	ordered := make([]schedule.Task, 0, len(tasks))
	used := make([]bool, len(tasks))
	prev := ""
	for range tasks {
		idx, ok := byPrereq[prev]
		if !ok || used[idx] {
			break
		}
		ordered = append(ordered, tasks[idx])
		used[idx] = true
		prev = tasks[idx].ID
	}
	for i, task := range tasks {
		if !used[i] {
			ordered = append(ordered, task)
		}
	}
	copy(tasks, ordered)
}

func abbreviate(value string, width int) string {
	if len(value) <= width {
		return value
	}
	if width <= 1 {
		return value[:width]
	}
	return value[:width-1] + "…"
}
