// Package presentation holds the user-facing state of an analysis session:
// its phase, the last result and the accumulated log.
package presentation

import (
	"github.com/coral-mesh/kfind/internal/report"
	"github.com/coral-mesh/kfind/internal/runner"
)

// Phase is the visible lifecycle of a session.
type Phase int

const (
	// Idle means nothing has been submitted yet.
	Idle Phase = iota
	// Working means a run is in flight and controls are disabled.
	Working
	// Done means the last run's result has been received. It persists
	// until the next submission.
	Done
)

func (p Phase) String() string {
	switch p {
	case Working:
		return "working"
	case Done:
		return "done"
	default:
		return "idle"
	}
}

// Progress describes what the progress indicator should show.
type Progress int

const (
	// ProgressNone hides the indicator.
	ProgressNone Progress = iota
	// ProgressIndeterminate animates while a run is in flight.
	ProgressIndeterminate
	// ProgressComplete shows a full bar.
	ProgressComplete
)

// State is owned by a single goroutine and is not safe for concurrent use.
type State struct {
	phase   Phase
	path    string
	last    runner.Result
	hasLast bool
	log     []report.Line
}

// New creates an Idle state whose log starts with the session banner.
func New() *State {
	return &State{log: report.Banner()}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Submit moves Idle or Done to Working for path. It is rejected while a
// run is already in flight.
func (s *State) Submit(path string) bool {
	if s.phase == Working {
		return false
	}
	s.phase = Working
	s.path = path
	s.log = append(s.log, report.Started(displayPath(path)))
	return true
}

// Receive moves Working to Done and records result. A result that arrives
// outside Working is ignored.
func (s *State) Receive(result runner.Result) bool {
	if s.phase != Working {
		return false
	}
	s.phase = Done
	s.last = result
	s.hasLast = true
	s.log = append(s.log, report.Lines(result.Outcome)...)
	return true
}

// ControlsEnabled reports whether new submissions may be made.
func (s *State) ControlsEnabled() bool {
	return s.phase != Working
}

// Progress returns the indicator to display for the current phase.
func (s *State) Progress() Progress {
	switch s.phase {
	case Working:
		return ProgressIndeterminate
	case Done:
		return ProgressComplete
	default:
		return ProgressNone
	}
}

// Path returns the path of the in-flight or last submission.
func (s *State) Path() string {
	return s.path
}

// LastResult returns the most recently received result.
func (s *State) LastResult() (runner.Result, bool) {
	return s.last, s.hasLast
}

// CopyText returns the load_module offset of the last result, or "" when
// the last outcome was not a success.
func (s *State) CopyText() string {
	if !s.hasLast {
		return ""
	}
	return s.last.Outcome.LoadModuleHex()
}

// Log returns every line appended so far.
func (s *State) Log() []report.Line {
	return s.log
}

// Note appends a free-form line to the log.
func (s *State) Note(line report.Line) {
	s.log = append(s.log, line)
}

func displayPath(path string) string {
	if path == "" {
		return "(no file)"
	}
	return path
}
