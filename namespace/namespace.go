package namespace

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Kind tells which backend a Namespace is built on.
type Kind int

const (
	// Filesystem is a directory tree on the host filesystem.
	Filesystem Kind = iota
	// Archive is the contents of a ZIP or JAR file.
	Archive
)

func (k Kind) String() string {
	switch k {
	case Filesystem:
		return "filesystem"
	case Archive:
		return "archive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Namespace is a read-only hierarchical view over a directory tree or an
// archive. Names are slash-separated, cleaned, and relative to the namespace
// root; "." names the root itself.
type Namespace interface {
	Kind() Kind
	// Location is the host path of the backing directory or archive file.
	Location() string
	// Stat follows symbolic links when the backend has them.
	Stat(name string) (fs.FileInfo, error)
	// ReadDir returns the children of a directory sorted by name.
	ReadDir(name string) ([]fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	// Walk calls fn for every regular file below name, depth first.
	Walk(name string, fn func(name string, info fs.FileInfo) error) error
	Close() error
}

// WalkFunc is called for each regular file a Root walks. Returning an error
// stops the walk and the error is returned from Walk.
type WalkFunc func(e Entry) error

// Root is one resolved side of a comparison: a Namespace plus the subpath the
// user pointed at inside it. A Root owns its Namespace and must be closed.
type Root struct {
	ns   Namespace
	base string

	closeOnce sync.Once
	closeErr  error
}

// NewRoot wraps ns, rooting all relative paths at base.
func NewRoot(ns Namespace, base string) *Root {
	return &Root{ns: ns, base: cleanName(base)}
}

// Kind reports the backend of the Root.
func (r *Root) Kind() Kind { return r.ns.Kind() }

// Base returns the subpath inside the namespace this Root is anchored at.
func (r *Root) Base() string { return r.base }

// Location is the host path of the directory or archive backing the Root.
func (r *Root) Location() string { return r.ns.Location() }

func (r *Root) String() string {
	if r.ns.Kind() == Archive {
		if r.base == "." {
			return r.ns.Location()
		}
		return r.ns.Location() + "!/" + r.base
	}
	if r.base == "." {
		return r.ns.Location()
	}
	return filepath.Join(r.ns.Location(), filepath.FromSlash(r.base))
}

// Resolve returns the entry at rel below the Root. The entry is returned
// whether or not it exists. A rel that would leave the Root resolves to an
// entry that never exists.
func (r *Root) Resolve(rel string) Entry {
	rel = strings.TrimLeft(filepath.ToSlash(rel), "/")
	clean := path.Clean(rel)
	if escapes(clean) {
		return Entry{root: r, rel: clean, invalid: true}
	}
	if clean == "." {
		clean = ""
	}
	return Entry{root: r, rel: clean}
}

// Walk visits every regular file below the Root's subpath. When the subpath
// names a regular file, that file is the only entry and its rel is empty.
func (r *Root) Walk(fn WalkFunc) error {
	info, err := r.ns.Stat(r.base)
	if err != nil {
		return fmt.Errorf("walk %s: %w", r, err)
	}
	if info.Mode().IsRegular() {
		return fn(Entry{root: r})
	}
	return r.ns.Walk(r.base, func(name string, _ fs.FileInfo) error {
		rel := name
		if r.base != "." {
			rel = strings.TrimPrefix(name, r.base+"/")
		}
		return fn(Entry{root: r, rel: rel})
	})
}

// SameRoot reports whether both Roots view the same location and subpath.
func (r *Root) SameRoot(other *Root) bool {
	if other == nil {
		return false
	}
	if r == other {
		return true
	}
	return r.Kind() == other.Kind() &&
		sameLocation(r.Location(), other.Location()) &&
		r.base == other.base
}

// HostRel returns where hostPath lies relative to the Root when the Root is
// a directory tree containing it. The Root itself yields "".
func (r *Root) HostRel(hostPath string) (string, bool) {
	d, ok := r.ns.(*DirNamespace)
	if !ok {
		return "", false
	}
	name, ok := d.Contains(hostPath)
	if !ok {
		return "", false
	}
	switch {
	case name == r.base:
		return "", true
	case r.base == ".":
		return name, true
	case strings.HasPrefix(name, r.base+"/"):
		return strings.TrimPrefix(name, r.base+"/"), true
	}
	return "", false
}

// Close releases the backing handle. It is safe to call more than once.
func (r *Root) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.ns.Close()
	})
	return r.closeErr
}

// ReadDir lists the children of a directory entry.
func (r *Root) ReadDir(e Entry) ([]fs.FileInfo, error) {
	if e.invalid {
		return nil, &fs.PathError{Op: "readdir", Path: e.rel, Err: fs.ErrNotExist}
	}
	return r.ns.ReadDir(e.Name())
}

// IsEmpty reports whether e is a directory without children.
func (r *Root) IsEmpty(e Entry) bool {
	if !e.IsDir() {
		return false
	}
	children, err := r.ReadDir(e)
	return err == nil && len(children) == 0
}

// Entry is a file or directory inside a Root, addressed by its path relative
// to the Root. Entries are cheap values and hold no resources.
type Entry struct {
	root    *Root
	rel     string
	invalid bool
}

// Root returns the Root the entry was resolved against.
func (e Entry) Root() *Root { return e.root }

// Rel returns the slash-separated path relative to the Root. It is empty for
// the Root itself.
func (e Entry) Rel() string { return e.rel }

// Name returns the entry's name inside the namespace, including the Root's
// subpath.
func (e Entry) Name() string {
	if e.rel == "" {
		return e.root.base
	}
	if e.root.base == "." {
		return e.rel
	}
	return e.root.base + "/" + e.rel
}

// Display renders the relative path the way the entry's namespace does:
// forward slashes inside archives, host separators on the filesystem. The
// Root itself renders as its base name.
func (e Entry) Display() string {
	rel := e.rel
	if rel == "" {
		rel = path.Base(e.Name())
		if rel == "." || rel == "/" {
			rel = path.Base(filepath.ToSlash(e.root.Location()))
		}
	}
	if e.root.Kind() == Filesystem {
		return filepath.FromSlash(rel)
	}
	return rel
}

func (e Entry) String() string {
	if e.root.Kind() == Archive {
		return e.root.Location() + "!/" + e.Name()
	}
	return filepath.Join(e.root.Location(), filepath.FromSlash(e.Name()))
}

// Stat describes the entry, following symbolic links.
func (e Entry) Stat() (fs.FileInfo, error) {
	if e.invalid {
		return nil, &fs.PathError{Op: "stat", Path: e.rel, Err: fs.ErrNotExist}
	}
	return e.root.ns.Stat(e.Name())
}

// Exists reports whether the entry is present in its namespace.
func (e Entry) Exists() bool {
	_, err := e.Stat()
	return err == nil
}

// IsDir reports whether the entry exists and is a directory.
func (e Entry) IsDir() bool {
	info, err := e.Stat()
	return err == nil && info.IsDir()
}

// IsRegular reports whether the entry exists and is a regular file.
func (e Entry) IsRegular() bool {
	info, err := e.Stat()
	return err == nil && info.Mode().IsRegular()
}

// Size returns the entry's length in bytes without reading it.
func (e Entry) Size() (int64, error) {
	info, err := e.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Open returns a sequential stream over the entry's contents. Restarting
// means opening again.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.invalid {
		return nil, &fs.PathError{Op: "open", Path: e.rel, Err: fs.ErrNotExist}
	}
	return e.root.ns.Open(e.Name())
}

// cleanName normalizes a slash-separated namespace name: no leading slash,
// no empty or dot elements. The root is ".". A backslash is an ordinary
// character here; archives rewrite theirs when they are indexed.
func cleanName(name string) string {
	name = path.Clean("/" + name)
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}

func escapes(clean string) bool {
	return clean == ".." || strings.HasPrefix(clean, "../")
}

func sameLocation(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
