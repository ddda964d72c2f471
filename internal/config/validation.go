package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	"disabled": true, "off": true,
}

// Validate checks a loaded configuration for values kfind cannot use.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case LogFormatAuto, LogFormatPretty, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (want %s, %s or %s)",
			cfg.Log.Format, LogFormatAuto, LogFormatPretty, LogFormatJSON)
	}

	if cfg.Source.MaxImageSize <= 0 {
		return fmt.Errorf("source.max_image_size must be positive, got %d", cfg.Source.MaxImageSize)
	}

	if len(cfg.Analyzer.BaseSymbols) == 0 {
		return fmt.Errorf("analyzer.base_symbols cannot be empty")
	}
	for i, sym := range cfg.Analyzer.BaseSymbols {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("analyzer.base_symbols[%d] is empty", i)
		}
	}

	return nil
}
