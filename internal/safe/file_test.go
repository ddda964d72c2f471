package safe

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("reads regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Image")
		require.NoError(t, os.WriteFile(path, []byte("kernel"), 0o644))

		got, err := ReadFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("kernel"), got)
	})

	t.Run("reads empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		got, err := ReadFile(path, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects symlink by default", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "Image")
		link := filepath.Join(dir, "link")
		require.NoError(t, os.WriteFile(src, []byte("kernel"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		_, err := ReadFile(link, nil)
		assert.ErrorIs(t, err, ErrSymlink)

		got, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})
		require.NoError(t, err)
		assert.Equal(t, []byte("kernel"), got)
	})

	t.Run("rejects directory", func(t *testing.T) {
		_, err := ReadFile(t.TempDir(), nil)
		assert.ErrorIs(t, err, ErrNotRegular)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big")
		require.NoError(t, os.WriteFile(path, make([]byte, 128), 0o644))

		_, err := ReadFile(path, &ReadOptions{MaxSize: 64})
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope"), nil)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestReadSized(t *testing.T) {
	got, err := readSized(strings.NewReader("kernel"), 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("kernel"), got)

	// The file shrank after it was stat'ed.
	_, err = readSized(strings.NewReader("ker"), 6)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = readSized(strings.NewReader(""), 6)
	assert.ErrorIs(t, err, io.EOF)

	got, err = readSized(strings.NewReader("extra"), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
