// internal/tui/app.go
//
// This is the interactive console for SMART-REPAIR. It uses bubbletea,
// which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/igorsilvi73/SMART-REPAIR/internal/config"
	"github.com/igorsilvi73/SMART-REPAIR/internal/engine"
	"github.com/igorsilvi73/SMART-REPAIR/internal/logbook"
	"github.com/igorsilvi73/SMART-REPAIR/internal/proficiency"
	"github.com/igorsilvi73/SMART-REPAIR/internal/schedule"
	"github.com/igorsilvi73/SMART-REPAIR/internal/store"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu   appState = iota // Main menu with board panel
	stateNewOrder                   // Order intake form
	stateConsole                    // Per-operator task console
	stateExperience                 // Worker x type score matrix
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock injects a deterministic clock.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithEngineOptions forwards extra options to the embedded engine.
func WithEngineOptions(opts ...engine.Option) AppOption {
	return func(a *App) {
		a.engineOpts = append(a.engineOpts, opts...)
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	engine  *engine.Engine
	logbook *logbook.Logbook
	snap    engine.Snapshot
	clock   func() time.Time

	engineOpts []engine.Option

	// UI components
	mainMenu   list.Model
	workerMenu list.Model
	statusMsg  string

	// Order intake form
	nameInput textinput.Model
	priority  int
	selected  map[string]bool

	// Console
	consoleWorker    string
	consoleTasks     []schedule.Task
	consoleSelection int

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance rooted at the given project dir.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	if err := config.InitSmartRepairDir(projectDir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "shop.log"))
	if err != nil {
		lb = nil
	}

	app := &App{
		state:    stateMainMenu,
		config:   cfg,
		logbook:  lb,
		clock:    time.Now,
		priority: 3,
		selected: map[string]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	engOpts := append([]engine.Option{
		engine.WithLogbook(lb),
		engine.WithStateStore(store.NewRepository(cfg.StateDir())),
		engine.WithClock(app.clock),
	}, app.engineOpts...)
	eng, err := engine.New(cfg.Catalog, proficiency.NewModel(), engOpts...)
	if err != nil {
		return nil, err
	}
	app.engine = eng

	snap, err := eng.Load()
	if err != nil {
		return nil, err
	}
	app.snap = snap

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ SMART-REPAIR"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	app.mainMenu = mainMenu

	workerMenu := list.New(buildWorkerMenu(cfg.Catalog), list.NewDefaultDelegate(), 0, 0)
	workerMenu.Title = "Select Operator"
	workerMenu.SetShowStatusBar(false)
	workerMenu.SetFilteringEnabled(false)
	app.workerMenu = workerMenu

	name := textinput.New()
	name.Placeholder = "Vehicle model"
	name.CharLimit = 64
	app.nameInput = name

	lb.Info("Console opened: %d orders, %d tasks on the board", len(snap.Orders), len(snap.Tasks))
	return app, nil
}

func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "New Order", desc: "Accept a vehicle and schedule its tasks"},
		menuItem{title: "Operator Console", desc: "Start, pause and finish assigned tasks"},
		menuItem{title: "Experience", desc: "Worker proficiency by task type"},
		menuItem{title: "Reschedule", desc: "Run a full scheduling pass now"},
		menuItem{title: "Exit", desc: "Quit SMART-REPAIR"},
	}
}

func buildWorkerMenu(cat config.Catalog) []list.Item {
	items := make([]list.Item, 0, len(cat.Workers))
	for _, worker := range cat.Workers {
		items = append(items, menuItem{title: worker, desc: "Open task console"})
	}
	return items
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		a.workerMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		}
		switch a.state {
		case stateNewOrder:
			return a.updateNewOrder(msg)
		case stateConsole:
			return a.updateConsole(msg)
		case stateExperience:
			if msg.String() == "enter" {
				return a.returnToMainMenu()
			}
			return a, nil
		}
		if msg.String() == "enter" {
			return a.handleMainMenuSelection()
		}
	}

	var cmd tea.Cmd
	if a.state == stateMainMenu {
		a.mainMenu, cmd = a.mainMenu.Update(msg)
	}
	return a, cmd
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "New Order":
		a.state = stateNewOrder
		a.nameInput.SetValue("")
		a.nameInput.Focus()
		a.priority = 3
		a.selected = map[string]bool{}
		a.statusMsg = "Type the model name; 1-9 toggle tasks, +/- priority, Enter submits"
		return a, textinput.Blink

	case "Operator Console":
		a.state = stateConsole
		a.consoleWorker = ""
		a.consoleSelection = 0
		a.statusMsg = "Pick an operator"
		if a.width > 0 && a.height > 0 {
			a.workerMenu.SetSize(max(0, a.width-6), max(0, a.height-12))
		}
		return a, nil

	case "Experience":
		a.state = stateExperience
		a.statusMsg = "Enter or Esc to go back"
		return a, nil

	case "Reschedule":
		next, err := a.engine.Recompute(a.snap)
		if err != nil {
			a.statusMsg = fmt.Sprintf("Pass failed, previous schedule kept: %v", err)
			return a, nil
		}
		a.snap = next
		a.statusMsg = "Schedule recomputed"
		return a, nil

	case "Exit":
		return a, tea.Quit
	}
	return a, nil
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.consoleWorker = ""
	a.nameInput.Blur()
	a.statusMsg = ""
	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 120
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ SMART-REPAIR · carrozzeria scheduler")

	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateNewOrder:
		content = a.renderNewOrderForm()
	case stateConsole:
		content = a.renderConsole()
	case stateExperience:
		content = RenderExperience(a.config.Catalog, a.engine)
	}

	contentBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(40, width-2)).
		Render(content)

	sections := []string{header, contentBox}
	if a.state == stateMainMenu {
		board := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(40, width-2)).
			Render(RenderBoard(a.config.Catalog, a.snap, a.clock()))
		sections = append(sections, board)
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", filepath.Base(a.logbook.Path())))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
