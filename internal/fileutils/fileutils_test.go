package fileutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))

	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(file))
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDirectoryExists(dir))
	assert.True(t, DirectoryExists(dir))
	require.NoError(t, EnsureDirectoryExists(dir))
	require.NoError(t, EnsureDirectoryExists(""))
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()

	data, err := ReadFileIfExists(filepath.Join(dir, "missing.csv"))
	require.NoError(t, err)
	assert.Nil(t, data)

	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("Nom,Categorie\n"), 0600))
	data, err = ReadFileIfExists(file)
	require.NoError(t, err)
	assert.Equal(t, "Nom,Categorie\n", string(data))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "learning.csv")

	require.NoError(t, WriteFileAtomic(file, []byte("first"), PermissionDataFile))
	require.NoError(t, WriteFileAtomic(file, []byte("second"), PermissionDataFile))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteAtomic_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(file, []byte("original"), 0600))

	err := WriteAtomic(file, PermissionDataFile, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder failed")
	})
	require.Error(t, err)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListFilesWithExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt", ".hidden.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0750))

	files, err := ListFilesWithExtension(dir, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)

	_, err = ListFilesWithExtension(filepath.Join(dir, "missing"), ".csv")
	assert.Error(t, err)
}
