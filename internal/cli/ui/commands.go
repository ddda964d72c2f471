package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coral-mesh/kfind/internal/runner"
)

// submitCmd posts a submission for path.
func submitCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return submitMsg{path: path}
	}
}

// waitForResultCmd blocks until the worker posts its result.
// Bubbletea runs commands off the event loop, so the loop never blocks.
func waitForResultCmd(results <-chan runner.Result) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{result: <-results}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{text: text, err: write(text)}
	}
}
