package config

import (
	"github.com/coral-mesh/kfind/internal/constants"
)

// Log output formats.
const (
	LogFormatAuto   = "auto"
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Log: LogConfig{
			Level:  constants.DefaultLogLevel,
			Format: LogFormatAuto,
		},
		Source: SourceConfig{
			MaxImageSize:  constants.DefaultMaxImageSize,
			AllowSymlinks: constants.DefaultAllowSymlinks,
		},
		Analyzer: AnalyzerConfig{
			BaseSymbols:    append([]string(nil), constants.DefaultBaseSymbols...),
			StrictPrologue: false,
		},
	}
}
