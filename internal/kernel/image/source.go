// Package image loads raw kernel images from disk.
package image

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/coral-mesh/kfind/internal/constants"
	"github.com/coral-mesh/kfind/internal/safe"
)

// Config contains configuration for the file source.
type Config struct {
	// MaxSize is the largest image, in bytes, that will be loaded.
	MaxSize int64

	// AllowSymlinks permits loading through a symbolic link.
	AllowSymlinks bool

	Logger zerolog.Logger
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:       constants.DefaultMaxImageSize,
		AllowSymlinks: constants.DefaultAllowSymlinks,
		Logger:        zerolog.Nop(),
	}
}

// FileSource reads whole kernel images into memory.
type FileSource struct {
	opts   safe.ReadOptions
	logger zerolog.Logger
}

// NewFileSource creates a file source.
func NewFileSource(cfg Config) *FileSource {
	return &FileSource{
		opts: safe.ReadOptions{
			MaxSize:       cfg.MaxSize,
			AllowSymlinks: cfg.AllowSymlinks,
		},
		logger: cfg.Logger.With().Str("component", "image").Logger(),
	}
}

// Load reads the image at path. The returned slice is owned by the caller.
func (s *FileSource) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := safe.ReadFile(path, &s.opts)
	if err != nil {
		return nil, fmt.Errorf("read kernel image: %w", err)
	}

	if e := s.logger.Debug(); e.Enabled() {
		e.Str("path", path).
			Int("size", len(data)).
			Str("xxh3", Fingerprint(data)).
			Msg("Loaded kernel image")
	}

	return data, nil
}

// Fingerprint returns the xxh3-64 digest of data as 16 hex digits.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
