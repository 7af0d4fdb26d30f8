package browse

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/dendrascience/dendra-archive-diff/internal/jartest"
	"github.com/dendrascience/dendra-archive-diff/namespace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, spec string) *namespace.Root {
	t.Helper()
	r, err := namespace.Resolve(spec)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBrowseArchive(t *testing.T) {
	ctx := context.Background()
	jar := jartest.Write(t, filepath.Join(t.TempDir(), "app.jar"), jartest.Files(
		"META-INF/MANIFEST.MF", "Manifest-Version: 1.0\n",
		"app.properties", "debug=false",
	)...)
	filesys := NewFS(resolve(t, jar))

	node, err := filesys.Root()
	require.NoError(t, err)
	root := node.(*Dir)

	var attr fuse.Attr
	require.NoError(t, root.Attr(ctx, &attr))
	assert.Equal(t, RootInode, attr.Inode)
	assert.True(t, attr.Mode.IsDir())

	dirents, err := root.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 2)
	assert.Equal(t, "META-INF", dirents[0].Name)
	assert.Equal(t, fuse.DT_Dir, dirents[0].Type)
	assert.Equal(t, "app.properties", dirents[1].Name)
	assert.Equal(t, fuse.DT_File, dirents[1].Type)

	node, err = root.Lookup(ctx, "app.properties")
	require.NoError(t, err)
	file := node.(*File)
	require.NoError(t, file.Attr(ctx, &attr))
	assert.Equal(t, uint64(len("debug=false")), attr.Size)
	assert.Equal(t, dirents[1].Inode, attr.Inode)
	assert.Zero(t, attr.Mode&0o222, "files are read-only")
	assert.True(t, attr.Mtime.Equal(jartest.Modified))

	data, err := file.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "debug=false", string(data))

	node, err = root.Lookup(ctx, "META-INF")
	require.NoError(t, err)
	sub := node.(*Dir)
	dirents, err = sub.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 1)
	assert.Equal(t, "MANIFEST.MF", dirents[0].Name)

	_, err = root.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, syscall.ENOENT)
}

func TestBrowseSingleFile(t *testing.T) {
	ctx := context.Background()
	jar := jartest.Write(t, filepath.Join(t.TempDir(), "app.jar"), jartest.Files("conf/app.properties", "x=1")...)
	filesys := NewFS(resolve(t, jar+"!/conf/app.properties"))

	node, err := filesys.Root()
	require.NoError(t, err)
	root := node.(*Dir)

	dirents, err := root.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 1)
	assert.Equal(t, "app.properties", dirents[0].Name)
	assert.NotEqual(t, RootInode, dirents[0].Inode)

	node, err = root.Lookup(ctx, "app.properties")
	require.NoError(t, err)
	data, err := node.(*File).ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x=1", string(data))

	_, err = root.Lookup(ctx, "other")
	assert.ErrorIs(t, err, syscall.ENOENT)
}

func TestBrowseDirectory(t *testing.T) {
	ctx := context.Background()
	dir := jartest.Tree(t, t.TempDir(), "a/b.txt", "bee")
	require.NoError(t, os.Chmod(filepath.Join(dir, "a", "b.txt"), 0o640))
	filesys := NewFS(resolve(t, dir))

	node, err := filesys.Root()
	require.NoError(t, err)
	node, err = node.(*Dir).Lookup(ctx, "a")
	require.NoError(t, err)
	node, err = node.(*Dir).Lookup(ctx, "b.txt")
	require.NoError(t, err)

	var attr fuse.Attr
	require.NoError(t, node.(*File).Attr(ctx, &attr))
	assert.Equal(t, os.FileMode(0o440), attr.Mode)
	data, err := node.(*File).ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))
}
