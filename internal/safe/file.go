// Package safe provides file reads with size and symlink validation.
package safe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize is the default maximum file size for safe file operations (1MB).
const DefaultMaxFileSize = 1 << 20

var (
	// ErrSymlink is returned when a symlink is read without AllowSymlinks.
	ErrSymlink = errors.New("symlinks are not allowed")
	// ErrNotRegular is returned for directories, devices and other non-regular files.
	ErrNotRegular = errors.New("not a regular file")
	// ErrTooLarge is returned when a file exceeds the configured maximum size.
	ErrTooLarge = errors.New("file too large")
)

// ReadOptions configures the behavior of ReadFile.
type ReadOptions struct {
	// MaxSize is the maximum allowed file size in bytes. Zero means DefaultMaxFileSize.
	MaxSize int64
	// AllowSymlinks allows reading through a symlink. Default is false for security.
	AllowSymlinks bool
}

// Stat validates path against opts and returns the info of the file that
// would be read, following the link when symlinks are allowed.
func Stat(path string, opts *ReadOptions) (os.FileInfo, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)

	// Check file info without following symlinks.
	info, err := os.Lstat(cleanPath)
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !opts.AllowSymlinks {
			return nil, fmt.Errorf("%q: %w", path, ErrSymlink)
		}
		info, err = os.Stat(cleanPath)
		if err != nil {
			return nil, err
		}
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q: %w", path, ErrNotRegular)
	}

	if info.Size() > maxSize {
		return nil, fmt.Errorf("%q is %d bytes, maximum is %d: %w", path, info.Size(), maxSize, ErrTooLarge)
	}

	return info, nil
}

// ReadFile reads a whole file after validating it with Stat.
// The read is capped at the validated size so a file growing underneath
// cannot exceed the limit, and a file shrinking underneath is an error.
func ReadFile(path string, opts *ReadOptions) ([]byte, error) {
	info, err := Stat(path, opts)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - the path has been validated above.
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	return readSized(f, info.Size())
}

// readSized reads exactly size bytes from r.
func readSized(r io.Reader, size int64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("short read, expected %d bytes: %w", size, err)
	}
	return buf, nil
}
