// Package helpers wires configuration, logging and the analysis pipeline
// for the kfind commands.
package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/kfind/internal/analysis"
	"github.com/coral-mesh/kfind/internal/config"
	"github.com/coral-mesh/kfind/internal/kernel/image"
	"github.com/coral-mesh/kfind/internal/kernel/release"
	"github.com/coral-mesh/kfind/internal/kernel/symbols"
	"github.com/coral-mesh/kfind/internal/logging"
)

// LoadConfig loads the config selected by g and applies the flag overrides.
func LoadConfig(g GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.ConfigFile != "" {
		cfg, err = config.LoadFile(g.ConfigFile)
	} else {
		cfg, err = config.NewLoader().Load()
	}
	if err != nil {
		return nil, err
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, nil
}

// Logging is the diagnostic log sink selected by the config.
type Logging struct {
	config  logging.Config
	discard bool
	closer  io.Closer
}

// NewLogging selects the log sink for cfg. Logs go to cfg.File when set,
// otherwise to fallback; a nil fallback discards them.
func NewLogging(cfg config.LogConfig, fallback io.Writer) (*Logging, error) {
	l := &Logging{config: logging.DefaultConfig(), closer: nopCloser{}}
	l.config.Level = cfg.Level
	l.config.Output = fallback

	if cfg.File != "" {
		//nolint:gosec // G301: Log directory needs standard permissions for traversal
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		//nolint:gosec // G304: Path comes from the user's config.
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.config.Output, l.closer = f, f
	}

	if l.config.Output == nil {
		l.discard = true
		return l, nil
	}

	switch cfg.Format {
	case config.LogFormatPretty:
		l.config.Pretty = true
	case config.LogFormatJSON:
		l.config.Pretty = false
	default:
		l.config.Pretty = logging.IsTerminal(l.config.Output)
	}
	return l, nil
}

// Logger returns the base logger handed to the pipeline components.
func (l *Logging) Logger() zerolog.Logger {
	if l.discard {
		return zerolog.Nop()
	}
	return logging.New(l.config)
}

// Component returns a logger tagged with component.
func (l *Logging) Component(component string) zerolog.Logger {
	if l.discard {
		return zerolog.Nop()
	}
	return logging.NewWithComponent(l.config, component)
}

// Close releases the log file, if one was opened.
func (l *Logging) Close() error {
	return l.closer.Close()
}

// NewPipeline builds the analysis pipeline from cfg.
func NewPipeline(cfg *config.Config, logger zerolog.Logger) *analysis.Pipeline {
	sourceCfg := image.DefaultConfig()
	sourceCfg.Logger = logger
	if cfg.Source.MaxImageSize > 0 {
		sourceCfg.MaxSize = cfg.Source.MaxImageSize
	}
	sourceCfg.AllowSymlinks = cfg.Source.AllowSymlinks

	analyzerCfg := symbols.DefaultConfig()
	analyzerCfg.Logger = logger
	if len(cfg.Analyzer.BaseSymbols) > 0 {
		analyzerCfg.BaseSymbols = cfg.Analyzer.BaseSymbols
	}
	analyzerCfg.StrictPrologue = cfg.Analyzer.StrictPrologue

	source := image.NewFileSource(sourceCfg)
	analyzer := symbols.NewAnalyzer(analyzerCfg)

	return analysis.NewPipeline(source, release.NewDetector(), analyzer, logger)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
