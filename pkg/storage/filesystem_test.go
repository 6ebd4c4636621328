package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndReadFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("pdf_files/report_1.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "pdf_files/report_1.pdf", name)

	data, err := store.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestLocalStorageOpenMissingFileIsNotExist(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("application_files/application_1/summary_1.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalStorageResolveStaysUnderBaseDir(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(base), "escape.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	for _, name := range []string{
		"../escape.txt",
		"../../escape.txt",
		outside,
	} {
		resolved := store.Path(name)
		assert.True(t, strings.HasPrefix(resolved, base+string(os.PathSeparator)), "resolved %q to %q", name, resolved)

		_, err := store.Open(name)
		assert.True(t, errors.Is(err, fs.ErrNotExist), "open %q must miss inside the base dir", name)
	}
}
