package runner

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sync runs the analysis on the calling goroutine.
type Sync struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

// NewSync creates a blocking executor.
func NewSync(analyzer Analyzer, logger zerolog.Logger) *Sync {
	return &Sync{
		analyzer: analyzer,
		logger:   logger.With().Str("component", "runner").Str("mode", "sync").Logger(),
	}
}

// Run analyzes path and returns its Result.
func (s *Sync) Run(ctx context.Context, path string) Result {
	id := uuid.New()
	s.logger.Debug().Str("run_id", id.String()).Str("path", path).Msg("Starting analysis")

	result := run(ctx, s.analyzer, id, path)

	s.logger.Debug().
		Str("run_id", id.String()).
		Stringer("outcome", result.Outcome.Kind).
		Dur("elapsed", result.Elapsed).
		Msg("Analysis finished")
	return result
}

// Execute runs the analysis and calls deliver before returning.
// A synchronous submission is always accepted.
func (s *Sync) Execute(ctx context.Context, path string, deliver DeliverFunc) bool {
	deliver(s.Run(ctx, path))
	return true
}
