// Package ui implements the interactive terminal front end.
package ui

import (
	"context"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/coral-mesh/kfind/internal/constants"
	"github.com/coral-mesh/kfind/internal/presentation"
	"github.com/coral-mesh/kfind/internal/runner"
)

// Executor is the background execution capability the model drives.
// *runner.Async satisfies it.
type Executor interface {
	Execute(ctx context.Context, path string, deliver runner.DeliverFunc) bool
	Complete(result runner.Result) bool
}

// Options configures a Model.
type Options struct {
	// InitialPath is submitted as soon as the program starts.
	InitialPath string

	// Clipboard writes the copied offset. Defaults to the system clipboard.
	Clipboard func(string) error
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	ctx   context.Context
	exec  Executor
	state *presentation.State

	// results is the one-slot queue the worker posts its Result onto.
	results chan runner.Result

	initialPath string
	clipboard   func(string) error

	// UI state
	input     textinput.Model
	prompting bool
	spinner   spinner.Model
	progress  progress.Model
	log       viewport.Model
	showHelp  bool
	status    string

	renderer *glamour.TermRenderer
	width    int
	height   int

	quitting bool
}

// NewModel creates the interactive model.
func NewModel(ctx context.Context, exec Executor, opts Options) (Model, error) {
	ti := textinput.New()
	ti.Placeholder = "/path/to/Image (or drop the file here)"
	ti.Prompt = "Kernel image: "
	ti.CharLimit = 4096
	ti.Width = constants.DefaultUIWidth - len(ti.Prompt) - 2

	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = constants.DefaultUIWidth - 4

	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(constants.DefaultUIWidth)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return Model{}, err
	}

	write := opts.Clipboard
	if write == nil {
		write = clipboard.WriteAll
	}

	m := Model{
		ctx:         ctx,
		exec:        exec,
		state:       presentation.New(),
		results:     make(chan runner.Result, 1),
		initialPath: opts.InitialPath,
		clipboard:   write,
		input:       ti,
		spinner:     s,
		progress:    p,
		log:         viewport.New(constants.DefaultUIWidth, logHeight(constants.DefaultUIHeight)),
		renderer:    renderer,
		width:       constants.DefaultUIWidth,
		height:      constants.DefaultUIHeight,
	}
	m.refreshLog()
	return m, nil
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	if m.initialPath != "" {
		return submitCmd(m.initialPath)
	}
	return nil
}

// State exposes the presentation state.
func (m Model) State() *presentation.State {
	return m.state
}

// logHeight is the viewport height left after the header, status, prompt
// and hint lines.
func logHeight(total int) int {
	h := total - 7
	if h < 3 {
		h = 3
	}
	return h
}
