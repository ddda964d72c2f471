package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/kfind/internal/constants"
)

// Loader handles loading and saving the configuration file.
type Loader struct {
	baseDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. KFIND_CONFIG environment variable.
//  2. ~/.kfind under the user home directory.
//  3. .kfind under the system temp directory when there is no home.
func NewLoader() *Loader {
	if dir := os.Getenv(constants.ConfigDirEnv); dir != "" {
		return &Loader{baseDir: dir}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return &Loader{baseDir: filepath.Join(home, constants.DefaultDir)}
	}

	return &Loader{baseDir: filepath.Join(os.TempDir(), constants.DefaultDir)}
}

// NewLoaderAt creates a loader rooted at dir.
func NewLoaderAt(dir string) *Loader {
	return &Loader{baseDir: dir}
}

// ConfigPath returns the path to the config file.
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.baseDir, constants.ConfigFile)
}

// Load loads the config file, falling back to defaults when it does not
// exist, then applies environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	path := l.ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return finish(DefaultConfig())
	}
	return LoadFile(path)
}

// LoadFile loads an explicit config file. Unlike Load, a missing file is an error.
func LoadFile(path string) (*Config, error) {
	//nolint:gosec // G304: Path is supplied by the user or the config directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := MergeFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the config file, creating the directory if needed.
func (l *Loader) Save(cfg *Config) error {
	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(l.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	//nolint:gosec // G306: Config file is not sensitive
	if err := os.WriteFile(l.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
