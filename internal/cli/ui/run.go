package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context, exec Executor, opts Options) error {
	m, err := NewModel(ctx, exec, opts)
	if err != nil {
		return fmt.Errorf("failed to create UI: %w", err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}
