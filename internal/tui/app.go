// Package tui provides the terminal user interface for watching a
// research run: one row per worker, a rolling event log, and a footer
// with the run totals.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpark-labs/lexscout/internal/engine"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// RunEventMsg wraps an engine event for the TUI.
type RunEventMsg struct {
	Event engine.Event
}

// SessionDoneMsg signals that the research run has completed.
type SessionDoneMsg struct {
	Success bool
	Message string
}

// LogEntry is one line in the event log.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// workerRow tracks the display state of one research worker.
type workerRow struct {
	TaskID    string
	Topic     string
	Status    models.WorkerStatus
	Round     int
	ToolCalls int
}

// App is the main bubbletea model for the lexscout TUI.
type App struct {
	runID   string
	brief   string
	round   int
	workers []*workerRow
	logs    []LogEntry
	spin    spinner.Model

	width  int
	height int

	quitting       bool
	sessionDone    bool
	sessionSuccess bool
	sessionMessage string

	headerStyle   lipgloss.Style
	topicStyle    lipgloss.Style
	statusRunning lipgloss.Style
	statusDone    lipgloss.Style
	statusFailed  lipgloss.Style
	statusPending lipgloss.Style
	logStyle      lipgloss.Style
	errorStyle    lipgloss.Style
	footerStyle   lipgloss.Style
}

// New creates a new App instance.
func New() *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		workers: make([]*workerRow, 0),
		logs:    make([]LogEntry, 0),
		spin:    sp,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		topicStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")),

		statusRunning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		statusDone: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")), // Dark green

		statusFailed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red

		statusPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")), // Gray

		logStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case RunEventMsg:
		a.handleRunEvent(msg.Event)

	case SessionDoneMsg:
		a.sessionDone = true
		a.sessionSuccess = msg.Success
		a.sessionMessage = msg.Message
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", a.viewHeader(), a.viewWorkers(), a.viewLogs(), a.viewFooter())
}

func (a *App) viewHeader() string {
	title := "lexscout"
	if a.runID != "" {
		title = fmt.Sprintf("lexscout  run %s  round %d", a.runID, a.round)
	}
	if !a.sessionDone {
		title = a.spin.View() + " " + title
	}
	return a.headerStyle.Render(title)
}

func (a *App) viewWorkers() string {
	if len(a.workers) == 0 {
		return a.statusPending.Render("  waiting for the supervisor to delegate...") + "\n"
	}

	var view string
	for _, w := range a.workers {
		status := a.styleForStatus(w.Status).Render(string(w.Status))
		topic := w.Topic
		if a.width > 20 && len(topic) > a.width-40 {
			topic = topic[:a.width-40] + "..."
		}
		view += fmt.Sprintf("  %s  r%d  [%s]  %s  (%d tool calls)\n",
			w.TaskID, w.Round, status, a.topicStyle.Render(topic), w.ToolCalls)
	}
	return view
}

func (a *App) viewLogs() string {
	if len(a.logs) == 0 {
		return ""
	}

	// Show the most recent entries (up to 12)
	start := 0
	if len(a.logs) > 12 {
		start = len(a.logs) - 12
	}

	var view string
	for _, entry := range a.logs[start:] {
		ts := entry.Timestamp.Format("15:04:05")
		line := fmt.Sprintf("  %s %s", ts, entry.Message)
		if entry.Level == "ERROR" {
			view += a.errorStyle.Render(line) + "\n"
		} else {
			view += a.logStyle.Render(line) + "\n"
		}
	}
	return "\n" + view
}

func (a *App) viewFooter() string {
	if a.sessionDone {
		if a.sessionSuccess {
			return a.footerStyle.Render(fmt.Sprintf("✓ %s | Press q to exit", a.sessionMessage))
		}
		return a.footerStyle.Render(fmt.Sprintf("✗ %s | Press q to exit", a.sessionMessage))
	}
	return a.footerStyle.Render("Press q to quit")
}

func (a *App) styleForStatus(s models.WorkerStatus) lipgloss.Style {
	switch s {
	case models.WorkerStatusDeciding, models.WorkerStatusActing, models.WorkerStatusCompressing:
		return a.statusRunning
	case models.WorkerStatusDone:
		return a.statusDone
	case models.WorkerStatusFailed:
		return a.statusFailed
	default:
		return a.statusPending
	}
}

// handleRunEvent updates the display state from one engine event.
func (a *App) handleRunEvent(ev engine.Event) {
	level := "INFO"
	if ev.Error != nil {
		level = "ERROR"
	}
	if msg := eventMessage(ev); msg != "" {
		a.logs = append(a.logs, LogEntry{Timestamp: ev.Timestamp, Level: level, Message: msg})
	}

	switch ev.Type {
	case engine.EventRunStarted:
		a.runID = ev.RunID
		a.brief = ev.Message

	case engine.EventRoundStarted:
		a.round = ev.Round

	case engine.EventWorkerStarted:
		row := a.findOrCreateWorker(ev.TaskID)
		row.Topic = ev.Topic
		row.Round = ev.Round
		row.Status = models.WorkerStatusDeciding

	case engine.EventWorkerToolCall:
		row := a.findOrCreateWorker(ev.TaskID)
		row.Status = models.WorkerStatusActing
		row.ToolCalls++

	case engine.EventWorkerCompleted:
		a.findOrCreateWorker(ev.TaskID).Status = models.WorkerStatusDone

	case engine.EventWorkerFailed:
		a.findOrCreateWorker(ev.TaskID).Status = models.WorkerStatusFailed

	case engine.EventRunCompleted:
		// Final state arrives via SessionDoneMsg; the event is log-only.
	}
}

// eventMessage renders one event as a log line, or "" to skip it.
func eventMessage(ev engine.Event) string {
	switch ev.Type {
	case engine.EventRunStarted:
		return fmt.Sprintf("run %s started", ev.RunID)
	case engine.EventRoundStarted:
		return fmt.Sprintf("round %d started", ev.Round)
	case engine.EventSupervisorThinking:
		return "supervisor: " + ev.Message
	case engine.EventWorkerStarted:
		return fmt.Sprintf("worker %s researching %q", ev.TaskID, ev.Topic)
	case engine.EventWorkerToolCall:
		return fmt.Sprintf("worker %s calling %s", ev.TaskID, ev.Tool)
	case engine.EventWorkerCompleted:
		return fmt.Sprintf("worker %s done", ev.TaskID)
	case engine.EventWorkerFailed:
		return fmt.Sprintf("worker %s failed: %v", ev.TaskID, ev.Error)
	case engine.EventRoundCompleted:
		return fmt.Sprintf("round %d completed", ev.Round)
	case engine.EventRunCompleted:
		return "run completed"
	default:
		return ev.Message
	}
}

func (a *App) findOrCreateWorker(taskID string) *workerRow {
	for _, w := range a.workers {
		if w.TaskID == taskID {
			return w
		}
	}
	row := &workerRow{TaskID: taskID, Status: models.WorkerStatusPending}
	a.workers = append(a.workers, row)
	return row
}

// NewProgram creates a Bubbletea program that can receive messages
// via Send().
func NewProgram() (*tea.Program, *App) {
	app := New()
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}
