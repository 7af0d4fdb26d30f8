package namespace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ArchiveNamespace exposes the entries of a ZIP or JAR file. Entry names are
// normalized when the archive is opened: backslashes become slashes, leading
// slashes are dropped, and names that climb out of the archive are ignored.
type ArchiveNamespace struct {
	path     string
	rc       *zip.ReadCloser
	files    map[string]*zip.File
	dirs     map[string]time.Time
	children map[string][]string
	logger   *slog.Logger
	closed   bool
}

// OpenArchive opens the archive at archivePath. The returned namespace holds the
// file open until Close.
func OpenArchive(archivePath string, opts ...Option) (*ArchiveNamespace, error) {
	o := newOptions(opts)

	rc, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) && rc != nil {
		// names are normalized below
		err = nil
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, archivePath, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrArchiveMalformed, archivePath, err)
	}
	rc.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	rc.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	a := &ArchiveNamespace{
		path:     archivePath,
		rc:       rc,
		files:    make(map[string]*zip.File, len(rc.File)),
		dirs:     make(map[string]time.Time),
		children: make(map[string][]string),
		logger:   o.logger,
	}
	a.index(rc.File)
	return a, nil
}

func (a *ArchiveNamespace) index(files []*zip.File) {
	a.dirs["."] = time.Time{}
	for _, f := range files {
		raw := strings.ReplaceAll(f.Name, "\\", "/")
		isDir := strings.HasSuffix(raw, "/") || f.Mode().IsDir()
		trimmed := strings.TrimLeft(raw, "/")
		if trimmed == "" {
			continue
		}
		name := path.Clean(trimmed)
		if escapes(name) {
			a.logger.Debug("skipping archive entry outside root", "archive", a.path, "entry", f.Name)
			continue
		}
		if isDir {
			if !a.addDir(name, f.Modified) {
				a.logger.Debug("skipping directory entry shadowed by a file", "archive", a.path, "entry", f.Name)
			}
			continue
		}
		if _, dup := a.files[name]; dup {
			a.logger.Debug("skipping duplicate archive entry", "archive", a.path, "entry", f.Name)
			continue
		}
		if _, taken := a.dirs[name]; taken {
			a.logger.Debug("skipping file entry shadowed by a directory", "archive", a.path, "entry", f.Name)
			continue
		}
		if !a.addDir(path.Dir(name), time.Time{}) {
			a.logger.Debug("skipping archive entry below a file", "archive", a.path, "entry", f.Name)
			continue
		}
		a.files[name] = f
		a.link(name)
	}
	for dir := range a.children {
		slices.Sort(a.children[dir])
	}
}

// addDir registers name and its missing ancestors as directories. It fails
// when name or an ancestor is already a file.
func (a *ArchiveNamespace) addDir(name string, modified time.Time) bool {
	if mod, ok := a.dirs[name]; ok {
		if mod.IsZero() && !modified.IsZero() {
			a.dirs[name] = modified
		}
		return true
	}
	if _, isFile := a.files[name]; isFile {
		return false
	}
	if !a.addDir(path.Dir(name), time.Time{}) {
		return false
	}
	a.dirs[name] = modified
	a.link(name)
	return true
}

func (a *ArchiveNamespace) link(name string) {
	parent := path.Dir(name)
	a.children[parent] = append(a.children[parent], path.Base(name))
}

// Kind implements Namespace.
func (a *ArchiveNamespace) Kind() Kind { return Archive }

// Location implements Namespace.
func (a *ArchiveNamespace) Location() string { return a.path }

// Stat implements Namespace.
func (a *ArchiveNamespace) Stat(name string) (fs.FileInfo, error) {
	name = cleanName(name)
	if f, ok := a.files[name]; ok {
		return fileEntryInfo(name, f), nil
	}
	if mod, ok := a.dirs[name]; ok {
		return entryInfo{name: path.Base(name), mode: fs.ModeDir | 0o555, modTime: mod}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: a.path + "!/" + name, Err: fs.ErrNotExist}
}

// ReadDir implements Namespace.
func (a *ArchiveNamespace) ReadDir(name string) ([]fs.FileInfo, error) {
	name = cleanName(name)
	if _, ok := a.dirs[name]; !ok {
		if _, isFile := a.files[name]; isFile {
			return nil, &fs.PathError{Op: "readdir", Path: a.path + "!/" + name, Err: errors.New("not a directory")}
		}
		return nil, &fs.PathError{Op: "readdir", Path: a.path + "!/" + name, Err: fs.ErrNotExist}
	}
	infos := make([]fs.FileInfo, 0, len(a.children[name]))
	for _, child := range a.children[name] {
		info, err := a.Stat(path.Join(name, child))
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Open implements Namespace.
func (a *ArchiveNamespace) Open(name string) (io.ReadCloser, error) {
	if a.closed {
		return nil, &fs.PathError{Op: "open", Path: a.path + "!/" + name, Err: fs.ErrClosed}
	}
	name = cleanName(name)
	f, ok := a.files[name]
	if !ok {
		if _, isDir := a.dirs[name]; isDir {
			return nil, &fs.PathError{Op: "open", Path: a.path + "!/" + name, Err: errors.New("is a directory")}
		}
		return nil, &fs.PathError{Op: "open", Path: a.path + "!/" + name, Err: fs.ErrNotExist}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: a.path + "!/" + name, Err: err}
	}
	return rc, nil
}

// Walk implements Namespace. Children are visited in lexical order.
func (a *ArchiveNamespace) Walk(name string, fn func(name string, info fs.FileInfo) error) error {
	name = cleanName(name)
	if f, ok := a.files[name]; ok {
		return fn(name, fileEntryInfo(name, f))
	}
	if _, ok := a.dirs[name]; !ok {
		return &fs.PathError{Op: "walk", Path: a.path + "!/" + name, Err: fs.ErrNotExist}
	}
	for _, child := range a.children[name] {
		full := path.Join(name, child)
		if f, ok := a.files[full]; ok {
			if err := fn(full, fileEntryInfo(full, f)); err != nil {
				return err
			}
			continue
		}
		if err := a.Walk(full, fn); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Namespace.
func (a *ArchiveNamespace) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.rc.Close()
}

func fileEntryInfo(name string, f *zip.File) fs.FileInfo {
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	return entryInfo{
		name:    path.Base(name),
		size:    int64(f.UncompressedSize64),
		mode:    perm,
		modTime: f.Modified,
	}
}

// entryInfo describes an archive entry after name normalization. Entries
// stored with a symlink mode are reported as regular files.
type entryInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i entryInfo) Name() string       { return i.name }
func (i entryInfo) Size() int64        { return i.size }
func (i entryInfo) Mode() fs.FileMode  { return i.mode }
func (i entryInfo) ModTime() time.Time { return i.modTime }
func (i entryInfo) IsDir() bool        { return i.mode.IsDir() }
func (i entryInfo) Sys() any           { return nil }
