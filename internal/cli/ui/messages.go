package ui

import (
	"github.com/coral-mesh/kfind/internal/runner"
)

// submitMsg asks the model to analyze a path, e.g. the one given on the
// command line.
type submitMsg struct {
	path string
}

// resultMsg carries a completed run back to the event loop.
type resultMsg struct {
	result runner.Result
}

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct {
	text string
	err  error
}
