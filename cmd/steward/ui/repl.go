// Package ui implements the interactive terminal session using bubbletea.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stewardapp/steward/internal/engine"
)

// Styles (muted terminal aesthetic)
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ec699")) // sage green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d48a8a")) // dusty rose
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a054")) // amber
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a054"))
	inputStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7eb8da")) // steel blue
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
)

// outcomeMsg carries one handled input's results back into the update loop.
type outcomeMsg struct {
	input   string
	outcome *engine.BatchOutcome
}

// Model is the REPL: a scrollback viewport over a single-line input, with
// every line routed through the engine under one conversation ID.
type Model struct {
	eng    *engine.Engine
	convID string

	input    textinput.Model
	viewport viewport.Model
	lines    []string

	width  int
	height int
	ready  bool
}

// New builds the REPL model. convID scopes wizard state and the active
// project for the whole terminal session.
func New(eng *engine.Engine, convID string) Model {
	ti := textinput.New()
	ti.Placeholder = `Type /help for commands, Ctrl+C to quit`
	ti.Focus()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 76
	ti.PromptStyle = inputStyle
	ti.TextStyle = infoStyle

	vp := viewport.New(80, 20)

	m := Model{
		eng:      eng,
		convID:   convID,
		input:    ti,
		viewport: vp,
	}
	m.push(dimStyle.Render("Steward ready. Commands start with /, chain with &&."))
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3 // input + status line
		m.input.Width = msg.Width - 4
		m.refresh()
		m.ready = true

	case outcomeMsg:
		m.push(inputStyle.Render("> " + msg.input))
		for _, resp := range msg.outcome.Results {
			m.push(renderResponse(resp))
		}
		for _, skipped := range msg.outcome.Unexecuted {
			m.push(dimStyle.Render("  skipped: " + skipped))
		}
		m.syncPrompt(msg.outcome)
	}

	m.input, tiCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit routes the current input line through the engine.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.input.Reset()

	// A wizard may be waiting for input, in which case even an empty line
	// is an answer (it skips an optional step).
	trimmed := strings.TrimSpace(value)
	if m.input.Prompt == "> " {
		if trimmed == "" {
			return m, nil
		}
		if trimmed == "exit" || trimmed == "quit" {
			return m, tea.Quit
		}
	}

	eng, convID := m.eng, m.convID
	return m, func() tea.Msg {
		return outcomeMsg{
			input:   value,
			outcome: eng.Handle(context.Background(), convID, value),
		}
	}
}

// syncPrompt switches the input prompt while a wizard is collecting.
func (m *Model) syncPrompt(outcome *engine.BatchOutcome) {
	prompt := "> "
	if n := len(outcome.Results); n > 0 && outcome.Results[n-1].Type == engine.TypePrompt {
		prompt = promptStyle.Render("? ")
	}
	m.input.Prompt = prompt
}

func (m *Model) push(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	status := ""
	if scope, ok := m.eng.ActiveProject(m.convID); ok {
		status = statusStyle.Render("project: " + scope.Name)
	} else {
		status = statusStyle.Render("no active project")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), status)
}

// renderResponse colors one response by its type.
func renderResponse(resp *engine.Response) string {
	switch resp.Type {
	case engine.TypeSuccess:
		return successStyle.Render("✓ " + resp.Message)
	case engine.TypeError:
		return errorStyle.Render("✗ " + resp.Message)
	case engine.TypeWarning:
		return warnStyle.Render("! " + resp.Message)
	case engine.TypePrompt:
		return promptStyle.Render("? " + resp.Message)
	default:
		return infoStyle.Render(resp.Message)
	}
}
