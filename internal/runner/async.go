package runner

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Async runs each accepted analysis on its own goroutine. At most one run
// is in flight; submissions made while Working are dropped.
//
// Execute and Complete are meant to be called from the receiver's goroutine.
// The worker only builds the Result and hands it to deliver.
type Async struct {
	analyzer Analyzer
	logger   zerolog.Logger

	mu      sync.Mutex
	state   RunState
	current uuid.UUID

	wg sync.WaitGroup
}

// NewAsync creates a background executor in the Idle state.
func NewAsync(analyzer Analyzer, logger zerolog.Logger) *Async {
	return &Async{
		analyzer: analyzer,
		logger:   logger.With().Str("component", "runner").Str("mode", "async").Logger(),
	}
}

// State returns the current run state.
func (a *Async) State() RunState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Current returns the ID of the in-flight or last completed run.
func (a *Async) Current() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Execute starts a background run for path. It returns false without
// starting anything when a run is already in flight.
func (a *Async) Execute(ctx context.Context, path string, deliver DeliverFunc) bool {
	a.mu.Lock()
	if a.state == Working {
		a.mu.Unlock()
		a.logger.Debug().Str("path", path).Msg("Run in flight, submission dropped")
		return false
	}
	id := uuid.New()
	a.state = Working
	a.current = id
	a.mu.Unlock()

	logger := a.logger.With().Str("run_id", id.String()).Logger()
	logger.Debug().Str("path", path).Msg("Starting background analysis")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		result := run(ctx, a.analyzer, id, path)
		logger.Debug().
			Stringer("outcome", result.Outcome.Kind).
			Dur("elapsed", result.Elapsed).
			Msg("Background analysis finished")
		deliver(result)
	}()

	return true
}

// Complete records the arrival of a Result on the receiver side and moves
// Working to Done. Results that do not belong to the in-flight run are
// ignored and reported as false.
func (a *Async) Complete(result Result) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Working || result.RunID != a.current {
		a.logger.Warn().
			Str("run_id", result.RunID.String()).
			Stringer("state", a.state).
			Msg("Ignoring result for a run that is not in flight")
		return false
	}
	a.state = Done
	return true
}

// Wait blocks until every started worker has delivered its result.
func (a *Async) Wait() {
	a.wg.Wait()
}
