package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/kanban"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

const commitTimeout = 10 * time.Second

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(22)

	columnTitleStyle = lipgloss.NewStyle().Bold(true)

	cardStyle = lipgloss.NewStyle().Padding(0, 1)

	selectedCardStyle = cardStyle.
				Foreground(lipgloss.Color("212")).
				Bold(true)

	grabbedCardStyle = selectedCardStyle.
				Background(lipgloss.Color("57"))

	toastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// leadsLoadedMsg carries a fresh lead collection from the server.
type leadsLoadedMsg struct {
	leads []models.Lead
	err   error
}

// commitDoneMsg carries the result of a stage-change network call.
type commitDoneMsg struct {
	err error
}

// resultSetter feeds a pre-computed network result into the board's
// DragEnd. The network call itself runs in a tea command so that all
// board mutation stays on the update goroutine.
type resultSetter struct {
	err error
}

func (s *resultSetter) SetStage(context.Context, uuid.UUID, models.LeadStage) error {
	return s.err
}

// App is the board application model, following the usual
// Model/Update/View architecture: keyboard gestures map onto the
// board's drag machine, and commits round-trip through the API client.
type App struct {
	board  *kanban.Board
	setter *resultSetter
	client *APIClient
	spin   spinner.Model

	col, row   int
	committing bool
	loading    bool

	toast string
	err   string

	width  int
	height int
}

// NewApp creates the board model. Leads are loaded by the init command.
func NewApp(client *APIClient) *App {
	setter := &resultSetter{}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &App{
		board:   kanban.NewBoard(setter, nil),
		setter:  setter,
		client:  client,
		spin:    spin,
		loading: true,
	}
}

// Init kicks off the initial lead fetch.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchLeads(), a.spin.Tick)
}

// Update handles messages and key events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case leadsLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.err = fmt.Sprintf("load failed: %v", msg.err)
			return a, nil
		}
		a.err = ""
		if a.board.Replace(msg.leads) {
			a.clampCursor()
		}
		return a, nil

	case commitDoneMsg:
		a.committing = false
		a.setter.err = msg.err
		outcome, err := a.board.DragEnd(context.Background())
		switch outcome {
		case kanban.OutcomeCommitted:
			a.toast = "Lead moved"
			a.err = ""
		case kanban.OutcomeRolledBack:
			a.toast = ""
			a.err = fmt.Sprintf("Move failed, board restored: %v", err)
		}
		a.clampCursor()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.committing {
		// One gesture in flight at a time; ignore input until the
		// pending commit resolves.
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "r":
		if a.board.State() == kanban.StateIdle {
			a.loading = true
			return a, a.fetchLeads()
		}

	case "left", "h":
		a.moveColumn(-1)

	case "right", "l":
		a.moveColumn(1)

	case "up", "k":
		if a.board.State() == kanban.StateIdle && a.row > 0 {
			a.row--
		}

	case "down", "j":
		if a.board.State() == kanban.StateIdle {
			columns := a.board.Columns()
			if a.row < len(columns[a.col].Leads)-1 {
				a.row++
			}
		}

	case " ", "enter":
		return a.grabOrDrop()

	case "esc":
		if a.board.State() == kanban.StateDragging {
			a.board.Cancel()
			a.toast = ""
			a.clampCursor()
		}
	}

	return a, nil
}

// moveColumn moves the cursor between columns; while a lead is grabbed
// it also hovers the lead over the new column, optimistically rewriting
// local state for live feedback.
func (a *App) moveColumn(delta int) {
	next := a.col + delta
	if next < 0 || next >= len(models.AllStages) {
		return
	}
	a.col = next

	if a.board.State() == kanban.StateDragging {
		if err := a.board.DragOver(models.AllStages[a.col]); err != nil {
			a.err = err.Error()
			return
		}
		columns := a.board.Columns()
		a.row = len(columns[a.col].Leads) - 1
		return
	}
	a.clampCursor()
}

func (a *App) grabOrDrop() (tea.Model, tea.Cmd) {
	switch a.board.State() {
	case kanban.StateIdle:
		columns := a.board.Columns()
		if a.row >= len(columns[a.col].Leads) {
			return a, nil
		}
		lead := columns[a.col].Leads[a.row]
		if err := a.board.DragStart(lead.ID); err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.toast = ""
		return a, nil

	case kanban.StateDragging:
		leadID, _, to, changed := a.board.Pending()
		if !changed {
			// Dropped on the original column: no network call.
			_, _ = a.board.DragEnd(context.Background())
			return a, nil
		}
		a.committing = true
		return a, a.commitStage(leadID, to)
	}

	return a, nil
}

func (a *App) fetchLeads() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		leads, err := a.client.ListLeads(ctx)
		return leadsLoadedMsg{leads: leads, err: err}
	}
}

func (a *App) commitStage(leadID uuid.UUID, stage models.LeadStage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		return commitDoneMsg{err: a.client.SetStage(ctx, leadID, stage)}
	}
}

func (a *App) clampCursor() {
	columns := a.board.Columns()
	if a.col >= len(columns) {
		a.col = len(columns) - 1
	}
	if a.row >= len(columns[a.col].Leads) {
		a.row = len(columns[a.col].Leads) - 1
	}
	if a.row < 0 {
		a.row = 0
	}
}

// View renders the stage columns side by side.
func (a *App) View() string {
	if a.loading {
		return "\n  " + a.spin.View() + " Loading leads...\n"
	}

	active := a.board.ActiveLead()
	columns := a.board.Columns()
	rendered := make([]string, 0, len(columns))

	for i, column := range columns {
		var sb strings.Builder
		sb.WriteString(columnTitleStyle.Render(fmt.Sprintf("%s (%d)", column.Stage, len(column.Leads))))
		sb.WriteString("\n")

		for j, lead := range column.Leads {
			style := cardStyle
			if i == a.col && j == a.row {
				style = selectedCardStyle
				if active != nil && active.ID == lead.ID {
					style = grabbedCardStyle
				}
			}
			sb.WriteString(style.Render(truncate(lead.Name, 18)))
			sb.WriteString("\n")
		}

		rendered = append(rendered, columnStyle.Render(sb.String()))
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	status := ""
	switch {
	case a.committing:
		status = a.spin.View() + " Committing..."
	case a.err != "":
		status = errorStyle.Render(a.err)
	case a.toast != "":
		status = toastStyle.Render(a.toast)
	}

	help := helpStyle.Render("←/→ move · ↑/↓ select · space grab/drop · esc cancel · r refresh · q quit")
	return view + "\n" + status + "\n" + help
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
