package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coral-mesh/kfind/internal/presentation"
	"github.com/coral-mesh/kfind/internal/report"
	"github.com/coral-mesh/kfind/internal/runner"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.Width = msg.Width
		m.log.Height = logHeight(msg.Height)
		m.progress.Width = max(msg.Width-4, 10)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		m.refreshLog()
		return m, nil

	case spinner.TickMsg:
		if m.state.ControlsEnabled() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitMsg:
		return m.submit(msg.path)

	case resultMsg:
		return m.receive(msg.result)

	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.status = "Copied " + msg.text + " to clipboard"
		}
		return m, nil
	}

	return m, nil
}

// submit starts a background run for path. It does nothing while a run is
// in flight.
func (m Model) submit(path string) (tea.Model, tea.Cmd) {
	if !m.state.ControlsEnabled() {
		return m, nil
	}

	results := m.results
	if !m.exec.Execute(m.ctx, path, func(r runner.Result) { results <- r }) {
		return m, nil
	}
	m.state.Submit(path)
	m.status = ""
	m.refreshLog()

	return m, tea.Batch(waitForResultCmd(m.results), m.spinner.Tick)
}

// receive applies a completed run to the presentation state.
func (m Model) receive(result runner.Result) (tea.Model, tea.Cmd) {
	if !m.exec.Complete(result) {
		return m, nil
	}
	m.state.Receive(result)
	m.refreshLog()
	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.prompting {
		return m.handlePromptKey(msg)
	}

	// A file dropped onto the terminal arrives as a paste of its path.
	if msg.Paste {
		return m.submit(cleanPath(string(msg.Runes)))
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "o":
		if !m.state.ControlsEnabled() {
			return m, nil
		}
		m.prompting = true
		m.input.SetValue(m.state.Path())
		return m, m.input.Focus()

	case "enter", "r":
		if m.state.Phase() == presentation.Idle {
			return m, nil
		}
		return m.submit(m.state.Path())

	case "c":
		text := m.state.CopyText()
		if text == "" {
			m.status = "No offset to copy"
			return m, nil
		}
		return m, copyCmd(m.clipboard, text)

	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	// Scroll the log.
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

// handlePromptKey edits the path prompt.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		m.input.Blur()
		return m, nil

	case "enter":
		path := cleanPath(m.input.Value())
		m.prompting = false
		m.input.Blur()
		m.input.Reset()
		return m.submit(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshLog re-renders the log into the viewport and scrolls to the end.
func (m *Model) refreshLog() {
	lines := m.state.Log()
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = renderLine(line)
	}
	m.log.SetContent(strings.Join(rendered, "\n"))
	m.log.GotoBottom()
}

// cleanPath strips the quoting terminals add to dropped file paths.
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}

func renderLine(line report.Line) string {
	switch line.Level {
	case report.LevelWarn:
		return warnStyle.Render(line.Text)
	case report.LevelError:
		return errorStyle.Render(line.Text)
	case report.LevelResult:
		return resultStyle.Render(line.Text)
	default:
		return line.Text
	}
}
