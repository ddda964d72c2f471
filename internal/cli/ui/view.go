package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coral-mesh/kfind/internal/presentation"
)

var (
	// Styles.
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const helpText = `## kfind

Locates the **load_module** offset in a raw aarch64 Linux kernel Image.

**Keys:**
- o          - Choose a kernel image (type or drop a path)
- enter, r   - Analyze the last file again
- c          - Copy the load_module offset
- up/down    - Scroll the log
- ?          - Toggle this help
- q, Ctrl+C  - Quit

Container images such as boot.img must be unpacked first.`

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("kfind"))
	b.WriteString(hintStyle.Render("  load_module offset finder"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.log.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHint())
	return b.String()
}

// renderStatus renders the progress indicator for the current phase.
func (m Model) renderStatus() string {
	switch m.state.Progress() {
	case presentation.ProgressIndeterminate:
		return fmt.Sprintf("%s Analyzing...", m.spinner.View())
	case presentation.ProgressComplete:
		line := m.progress.ViewAs(1)
		if m.status != "" {
			line += "\n" + hintStyle.Render(m.status)
		}
		return line
	default:
		if m.status != "" {
			return hintStyle.Render(m.status)
		}
		return ""
	}
}

// renderHint lists the keys available in the current phase.
func (m Model) renderHint() string {
	switch {
	case m.prompting:
		return hintStyle.Render("[enter to analyze, esc to cancel]")
	case !m.state.ControlsEnabled():
		return hintStyle.Render("[working... q to quit]")
	case m.state.CopyText() != "":
		return hintStyle.Render("[o open, c copy offset, enter re-run, ? help, q quit]")
	default:
		return hintStyle.Render("[o open, ? help, q quit]")
	}
}

func (m Model) renderHelp() string {
	rendered, err := m.renderer.Render(helpText)
	if err != nil {
		return helpText
	}
	return rendered
}
