// internal/tui/neworder.go
//
// Order intake form: vehicle model name, priority 1-5, and the subset
// of catalog task types the job needs. Submitting runs a reschedule
// pass over the grown task set.

package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/igorsilvi73/SMART-REPAIR/internal/engine"
)

func (a *App) updateNewOrder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return a.submitNewOrder()
	case "+", "right":
		if a.priority < engine.MaxPriority {
			a.priority++
		}
		return a, nil
	case "-", "left":
		if a.priority > engine.MinPriority {
			a.priority--
		}
		return a, nil
	}
	// Digit keys toggle the corresponding catalog task type.
	if n, err := strconv.Atoi(msg.String()); err == nil {
		types := a.config.Catalog.TypeNames()
		if n >= 1 && n <= len(types) {
			name := types[n-1]
			a.selected[name] = !a.selected[name]
			return a, nil
		}
	}
	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return a, cmd
}

func (a *App) submitNewOrder() (tea.Model, tea.Cmd) {
	var chosen []string
	for _, name := range a.config.Catalog.TypeNames() {
		if a.selected[name] {
			chosen = append(chosen, name)
		}
	}
	next, err := a.engine.SubmitOrder(a.snap, a.nameInput.Value(), a.priority, chosen)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Order rejected: %v", err)
		return a, nil
	}
	a.snap = next
	a.statusMsg = fmt.Sprintf("Order accepted: %s with %d tasks", strings.TrimSpace(a.nameInput.Value()), len(chosen))
	return a.returnToMainMenu()
}

func (a *App) renderNewOrderForm() string {
	title := lipgloss.NewStyle().Bold(true).Render("New Order")
	lines := []string{
		title,
		"",
		fmt.Sprintf("Model:    %s", a.nameInput.View()),
		fmt.Sprintf("Priority: %d   (1 = most urgent, 5 = least; +/- to adjust)", a.priority),
		"",
		"Tasks (toggle with digit keys):",
	}
	for i, name := range a.config.Catalog.TypeNames() {
		mark := "[ ]"
		if a.selected[name] {
			mark = "[x]"
		}
		duration, _ := a.config.Catalog.Duration(name)
		lines = append(lines, fmt.Sprintf("  %d %s %-32s %v", i+1, mark, name, duration))
	}
	lines = append(lines, "", "Enter → accept order    Esc → cancel")
	return strings.Join(lines, "\n")
}
