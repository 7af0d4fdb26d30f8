package namespace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DirNamespace exposes a directory tree on the host filesystem. All access
// goes through a filesystem bound to the directory, so symbolic links are
// only followed while they resolve inside it.
type DirNamespace struct {
	dir      string
	abs      string
	evalRoot string
	fs       billy.Filesystem
	logger   *slog.Logger
}

// OpenDir opens dir as a namespace. dir must exist and be a directory.
func OpenDir(dir string, opts ...Option) (*DirNamespace, error) {
	o := newOptions(opts)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, dir, err)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	evalRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return &DirNamespace{
		dir:      dir,
		abs:      abs,
		evalRoot: evalRoot,
		fs:       osfs.New(abs, osfs.WithBoundOS()),
		logger:   o.logger,
	}, nil
}

// Kind implements Namespace.
func (d *DirNamespace) Kind() Kind { return Filesystem }

// Location implements Namespace.
func (d *DirNamespace) Location() string { return d.dir }

// HostPath returns the absolute host path of name.
func (d *DirNamespace) HostPath(name string) string {
	return filepath.Join(d.abs, native(name))
}

// Contains reports whether hostPath lies inside the directory and returns its
// namespace name.
func (d *DirNamespace) Contains(hostPath string) (string, bool) {
	abs, err := filepath.Abs(hostPath)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(d.abs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return cleanName(filepath.ToSlash(rel)), true
}

// Stat implements Namespace.
func (d *DirNamespace) Stat(name string) (fs.FileInfo, error) {
	return d.fs.Stat(native(name))
}

// ReadDir implements Namespace. Symbolic links are reported as their
// targets; links leaving the directory are left out.
func (d *DirNamespace) ReadDir(name string) ([]fs.FileInfo, error) {
	name = cleanName(name)
	infos, err := d.fs.ReadDir(native(name))
	if err != nil {
		return nil, err
	}
	out := make([]fs.FileInfo, 0, len(infos))
	for _, info := range infos {
		if info.Mode()&fs.ModeSymlink != 0 {
			target, ok := d.follow(path.Join(name, info.Name()))
			if !ok {
				continue
			}
			info = target
		}
		out = append(out, info)
	}
	return out, nil
}

// Open implements Namespace.
func (d *DirNamespace) Open(name string) (io.ReadCloser, error) {
	return d.fs.Open(native(name))
}

// Walk implements Namespace. Each physical directory is descended at most
// once, so cyclic links terminate.
func (d *DirNamespace) Walk(name string, fn func(name string, info fs.FileInfo) error) error {
	name = cleanName(name)
	info, err := d.Stat(name)
	if err != nil {
		return err
	}
	if info.Mode().IsRegular() {
		return fn(name, info)
	}
	if !info.IsDir() {
		return nil
	}
	return d.walkDir(name, make(map[string]bool), fn)
}

func (d *DirNamespace) walkDir(name string, visited map[string]bool, fn func(string, fs.FileInfo) error) error {
	physical, err := filepath.EvalSymlinks(d.HostPath(name))
	if err != nil {
		return err
	}
	if visited[physical] {
		return nil
	}
	visited[physical] = true

	infos, err := d.fs.ReadDir(native(name))
	if err != nil {
		return err
	}
	for _, info := range infos {
		child := path.Join(name, info.Name())
		if info.Mode()&fs.ModeSymlink != 0 {
			target, ok := d.follow(child)
			if !ok {
				continue
			}
			info = target
		}
		switch {
		case info.IsDir():
			if err := d.walkDir(child, visited, fn); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := fn(child, info); err != nil {
				return err
			}
		}
	}
	return nil
}

// follow resolves the link at name. It fails for dangling links and links
// whose final target is outside the directory.
func (d *DirNamespace) follow(name string) (fs.FileInfo, bool) {
	resolved, err := filepath.EvalSymlinks(d.HostPath(name))
	if err != nil {
		d.logger.Debug("skipping dangling symlink", "path", d.HostPath(name), "error", err)
		return nil, false
	}
	rel, err := filepath.Rel(d.evalRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		d.logger.Debug("skipping symlink leaving root", "path", d.HostPath(name), "target", resolved)
		return nil, false
	}
	info, err := d.fs.Stat(native(name))
	if err != nil {
		d.logger.Debug("skipping unreadable symlink", "path", d.HostPath(name), "error", err)
		return nil, false
	}
	return linkInfo{FileInfo: info, name: path.Base(name)}, true
}

// linkInfo reports a link target under the link's own name.
type linkInfo struct {
	fs.FileInfo
	name string
}

func (i linkInfo) Name() string { return i.name }

// Close implements Namespace. A directory holds no handle.
func (d *DirNamespace) Close() error { return nil }

func native(name string) string {
	return filepath.FromSlash(cleanName(name))
}
