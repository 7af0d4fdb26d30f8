package namespace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dendrascience/dendra-archive-diff/internal/jartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWalkFollowsContainedLinks(t *testing.T) {
	base := t.TempDir()
	outside := jartest.Tree(t, filepath.Join(base, "outside"), "secret.txt", "s")
	root := jartest.Tree(t, filepath.Join(base, "root"),
		"a.txt", "a",
		"sub/b.txt", "b",
	)
	require.NoError(t, os.Symlink("sub", filepath.Join(root, "alias")))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "secret.txt")))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling")))
	require.NoError(t, os.Symlink("..", filepath.Join(root, "sub", "up")))

	d, err := OpenDir(root)
	require.NoError(t, err)

	var names []string
	require.NoError(t, d.Walk(".", func(name string, info fs.FileInfo) error {
		assert.True(t, info.Mode().IsRegular(), name)
		names = append(names, name)
		return nil
	}))
	// alias and sub are the same physical directory, so only the first is descended.
	assert.Equal(t, []string{"a.txt", "alias/b.txt", "link.txt"}, names)

	infos, err := d.ReadDir(".")
	require.NoError(t, err)
	var listed []string
	for _, info := range infos {
		listed = append(listed, info.Name())
	}
	assert.Equal(t, []string{"a.txt", "alias", "link.txt", "sub"}, listed)
}

func TestDirContains(t *testing.T) {
	root := t.TempDir()
	d, err := OpenDir(root)
	require.NoError(t, err)

	name, ok := d.Contains(filepath.Join(root, "diffs", "x"))
	assert.True(t, ok)
	assert.Equal(t, "diffs/x", name)

	name, ok = d.Contains(root)
	assert.True(t, ok)
	assert.Equal(t, ".", name)

	_, ok = d.Contains(filepath.Dir(root))
	assert.False(t, ok)
}

func TestOpenDirErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := OpenDir(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrInputNotFound)
	_, err = OpenDir(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestRootResolve(t *testing.T) {
	dir := jartest.Tree(t, t.TempDir(), "a/b.txt", "b", "zero", "")
	r, err := Resolve(dir)
	require.NoError(t, err)
	defer r.Close()

	tests := []struct {
		rel     string
		exists  bool
		isDir   bool
		wantRel string
	}{
		{rel: "a/b.txt", exists: true, wantRel: "a/b.txt"},
		{rel: "/a/b.txt", exists: true, wantRel: "a/b.txt"},
		{rel: "a/./b.txt", exists: true, wantRel: "a/b.txt"},
		{rel: "a", exists: true, isDir: true, wantRel: "a"},
		{rel: "", exists: true, isDir: true, wantRel: ""},
		{rel: "zero", exists: true, wantRel: "zero"},
		{rel: "../escape", exists: false, wantRel: "../escape"},
		{rel: "a/missing", exists: false, wantRel: "a/missing"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			e := r.Resolve(tt.rel)
			assert.Equal(t, tt.wantRel, e.Rel())
			assert.Equal(t, tt.exists, e.Exists())
			assert.Equal(t, tt.isDir, e.IsDir())
		})
	}

	size, err := r.Resolve("a/b.txt").Size()
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
	assert.Equal(t, filepath.Join("a", "b.txt"), r.Resolve("a/b.txt").Display())
}

func TestSameRoot(t *testing.T) {
	dir := jartest.Tree(t, t.TempDir(), "a.txt", "a")
	jar := jartest.Write(t, filepath.Join(t.TempDir(), "x.jar"), jartest.Files("a.txt", "a")...)

	open := func(spec string) *Root {
		r, err := Resolve(spec)
		require.NoError(t, err)
		t.Cleanup(func() { r.Close() })
		return r
	}

	assert.True(t, open(dir).SameRoot(open(dir)))
	assert.True(t, open(jar).SameRoot(open(jar+"!/")))
	assert.False(t, open(dir).SameRoot(open(jar)))
	assert.False(t, open(jar).SameRoot(nil))
}

func TestDirBackslashNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is the path separator")
	}
	root := jartest.Tree(t, t.TempDir(), `a\b`, "one", "a/b", "two")
	r, err := Resolve(root)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"a/b", `a\b`}, walkRels(t, r))

	e := r.Resolve(`a\b`)
	assert.True(t, e.IsRegular())
	assert.Equal(t, `a\b`, e.Display())
	rc, err := e.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))

	assert.False(t, r.Resolve(`c\d`).Exists())
}
