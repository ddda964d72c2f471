// Package runner executes analysis pipelines either inline or on a
// background goroutine, delivering exactly one Result per accepted run.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coral-mesh/kfind/internal/analysis"
)

// Analyzer is the capability the executors drive.
// *analysis.Pipeline satisfies it.
type Analyzer interface {
	Run(ctx context.Context, path string) analysis.Outcome
}

// Result is the record handed from a run to its receiver.
type Result struct {
	RunID   uuid.UUID
	Path    string
	Outcome analysis.Outcome
	Elapsed time.Duration
}

// DeliverFunc receives the Result of a run. It is called exactly once per
// accepted submission.
type DeliverFunc func(Result)

// Executor runs one analysis for path and hands the Result to deliver.
// It returns false when the submission was not accepted, in which case
// deliver is never called.
type Executor interface {
	Execute(ctx context.Context, path string, deliver DeliverFunc) bool
}

// RunState is the lifecycle of the background executor.
type RunState int

const (
	// Idle means no run has been accepted yet.
	Idle RunState = iota
	// Working means a run is in flight.
	Working
	// Done means the last run has completed and its result was received.
	Done
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Working:
		return "working"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func run(ctx context.Context, analyzer Analyzer, id uuid.UUID, path string) Result {
	start := time.Now()
	outcome := analyzer.Run(ctx, path)
	return Result{
		RunID:   id,
		Path:    path,
		Outcome: outcome,
		Elapsed: time.Since(start),
	}
}
