// Package config provides configuration loading and management.
package config

// SchemaVersion is the current config file schema version.
const SchemaVersion = "1"

// Config is the kfind configuration, stored at ~/.kfind/config.yaml.
type Config struct {
	Version  string         `yaml:"version"`
	Log      LogConfig      `yaml:"log"`
	Source   SourceConfig   `yaml:"source"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// LogConfig controls diagnostic logging. Reports are never written here.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string `yaml:"level" env:"KFIND_LOG_LEVEL"`

	// Format is auto (pretty on a terminal), pretty or json.
	Format string `yaml:"format" env:"KFIND_LOG_FORMAT"`

	// File receives logs instead of stderr. The interactive UI discards
	// logs when this is empty.
	File string `yaml:"file,omitempty" env:"KFIND_LOG_FILE"`
}

// SourceConfig controls how kernel images are read from disk.
type SourceConfig struct {
	// MaxImageSize is the largest file, in bytes, that will be loaded.
	MaxImageSize int64 `yaml:"max_image_size" env:"KFIND_MAX_IMAGE_SIZE"`

	// AllowSymlinks permits loading through a symbolic link.
	AllowSymlinks bool `yaml:"allow_symlinks" env:"KFIND_ALLOW_SYMLINKS"`
}

// AnalyzerConfig controls symbol resolution.
type AnalyzerConfig struct {
	// BaseSymbols are tried in order to find the address of file offset 0.
	BaseSymbols []string `yaml:"base_symbols" env:"KFIND_BASE_SYMBOLS"`

	// StrictPrologue fails the analysis when no function prologue is
	// decoded at the resolved offset.
	StrictPrologue bool `yaml:"strict_prologue" env:"KFIND_STRICT_PROLOGUE"`
}
