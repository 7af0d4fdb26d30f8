package browse

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/dendrascience/dendra-archive-diff/namespace"
)

// FS is a read-only FUSE filesystem over a resolved Root. Directories and
// files are looked up lazily through the Root, so archives are never
// extracted.
type FS struct {
	root    *namespace.Root
	inodes  *Inodes
	started time.Time
}

// NewFS creates a filesystem presenting root. The caller keeps ownership of
// root and closes it after the filesystem is unmounted.
func NewFS(root *namespace.Root) *FS {
	return &FS{
		root:    root,
		inodes:  NewInodes(),
		started: time.Now(),
	}
}

// Root returns the root directory node
func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{fs: f, rel: ""}, nil
}

// Dir is a directory of the Root, addressed by its relative path.
type Dir struct {
	fs  *FS
	rel string
}

var (
	_ fusefs.Node               = (*Dir)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)
	_ fusefs.Node               = (*File)(nil)
	_ fusefs.HandleReadAller    = (*File)(nil)
)

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.fs.inodes.Get(d.rel)
	a.Mode = os.ModeDir | 0o555
	mod := d.fs.started
	if info, err := d.fs.root.Resolve(d.rel).Stat(); err == nil && !info.ModTime().IsZero() {
		mod = info.ModTime()
	}
	a.Mtime = mod
	a.Ctime = mod
	a.Atime = mod
	return nil
}

// Lookup resolves a child name to a Dir or File node.
func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	if d.rel == "" && d.singleFile() {
		if display := d.fs.root.Resolve("").Display(); name == display {
			return d.fs.file("", display)
		}
		return nil, syscall.ENOENT
	}
	rel := path.Join(d.rel, name)
	info, err := d.fs.root.Resolve(rel).Stat()
	if err != nil {
		return nil, syscall.ENOENT
	}
	if info.IsDir() {
		return &Dir{fs: d.fs, rel: rel}, nil
	}
	if !info.Mode().IsRegular() {
		return nil, syscall.ENOENT
	}
	return &File{fs: d.fs, rel: rel, info: info, inode: d.fs.inodes.Get(rel)}, nil
}

// ReadDirAll lists the directory in name order.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	if d.rel == "" && d.singleFile() {
		display := d.fs.root.Resolve("").Display()
		return []fuse.Dirent{{
			Inode: d.fs.inodes.Get(display),
			Name:  display,
			Type:  fuse.DT_File,
		}}, nil
	}
	infos, err := d.fs.root.ReadDir(d.fs.root.Resolve(d.rel))
	if err != nil {
		return nil, syscall.ENOENT
	}
	dirents := make([]fuse.Dirent, 0, len(infos))
	for _, info := range infos {
		dirent := fuse.Dirent{
			Inode: d.fs.inodes.Get(path.Join(d.rel, info.Name())),
			Name:  info.Name(),
			Type:  fuse.DT_File,
		}
		switch {
		case info.IsDir():
			dirent.Type = fuse.DT_Dir
		case !info.Mode().IsRegular():
			continue
		}
		dirents = append(dirents, dirent)
	}
	return dirents, nil
}

// singleFile reports whether the Root was resolved to one regular file, in
// which case the mount shows a directory holding just that file.
func (d *Dir) singleFile() bool {
	return d.fs.root.Resolve("").IsRegular()
}

// file builds the node for rel, registered in the inode table under key.
func (f *FS) file(rel, key string) (fusefs.Node, error) {
	info, err := f.root.Resolve(rel).Stat()
	if err != nil {
		return nil, syscall.ENOENT
	}
	return &File{fs: f, rel: rel, info: info, inode: f.inodes.Get(key)}, nil
}

// File is a regular file of the Root. Its content is read on demand.
type File struct {
	fs    *FS
	rel   string
	info  fs.FileInfo
	inode uint64
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.inode
	a.Mode = f.info.Mode().Perm() &^ 0o222
	a.Size = uint64(f.info.Size())
	a.Mtime = f.info.ModTime()
	a.Ctime = f.info.ModTime()
	a.Atime = f.info.ModTime()
	return nil
}

// ReadAll reads the entire file content
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := f.fs.root.Resolve(f.rel).Open()
	if err != nil {
		return nil, syscall.EIO
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, syscall.EIO
	}
	return data, nil
}
