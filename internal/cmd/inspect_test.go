package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dendrascience/dendra-archive-diff/internal/jartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	dir := t.TempDir()
	jar := jartest.Write(t, filepath.Join(dir, "app.jar"), jartest.Files(
		"a", "1",
		"lib/b", "2",
		"lib/c", "3",
	)...)

	stdout, _, err := execute(t, "count", jar)
	require.NoError(t, err)
	assert.Equal(t, "Total files: 3\n", stdout)

	stdout, _, err = execute(t, "count", jar+"!/lib")
	require.NoError(t, err)
	assert.Equal(t, "Total files: 2\n", stdout)

	_, _, err = execute(t, "count")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	jar := jartest.Write(t, filepath.Join(dir, "app.jar"), jartest.Files(
		"com/acme/App.class", "cafe",
		"readme.txt", "hi",
	)...)
	dest := filepath.Join(dir, "out")

	stdout, _, err := execute(t, "extract", "--include", "*.class", jar, dest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "com/acme/App.class\n")
	assert.Contains(t, stdout, "Extracted 1 files")
	assert.FileExists(t, filepath.Join(dest, "com", "acme", "App.class"))
	assert.NoFileExists(t, filepath.Join(dest, "readme.txt"))

	_, _, err = execute(t, "extract", jar, dest)
	assert.Error(t, err, "existing files need --overwrite")

	_, _, err = execute(t, "extract", "-q", "--overwrite", jar, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "readme.txt"))

	stdout, _, err = execute(t, "extract", "--overwrite", jar, dest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Extracted 0 files")

	_, _, err = execute(t, "extract", "--include", "[", jar, dest)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := jartest.Write(t, filepath.Join(dir, "good.jar"), jartest.Files("a", "1", "b/c", "2")...)

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files checked: 2")
	assert.Contains(t, stdout, "Total errors: 0")

	bad := jartest.Write(t, filepath.Join(dir, "bad.jar"),
		jartest.File{Name: "ok.txt", Body: "fine"},
		jartest.File{Name: "broken.txt", Body: "CORRUPTME-payload", Stored: true},
	)
	jartest.Corrupt(t, bad, "CORRUPTME")

	stdout, _, err = execute(t, "validate", bad)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, stdout, "broken.txt")
	assert.Contains(t, stdout, "Total errors: 1")
}

func TestValidateDirectory(t *testing.T) {
	dir := jartest.Tree(t, t.TempDir(), "x", "1", "y/z", "2")
	stdout, _, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files checked: 2")

	_, _, err = execute(t, "validate", filepath.Join(dir, "nope"))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "nope"))
	assert.True(t, os.IsNotExist(statErr))
}
