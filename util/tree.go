package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dendrascience/dendra-archive-diff/namespace"
)

// Matcher selects entries by their slash separated relative path.
type Matcher func(rel string) bool

// MatchAny returns a Matcher accepting a path when any pattern matches it.
// Patterns use path.Match syntax. A pattern containing a slash is matched
// against the whole relative path, any other pattern against the base name.
func MatchAny(patterns ...string) (Matcher, error) {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
	}
	return func(rel string) bool {
		for _, p := range patterns {
			subject := path.Base(rel)
			if strings.Contains(p, "/") {
				subject = rel
			}
			if ok, _ := path.Match(p, subject); ok {
				return true
			}
		}
		return false
	}, nil
}

// TreeOption configures CopyTree.
type TreeOption func(*treeOptions)

type treeOptions struct {
	removeFirst bool
	overwrite   bool
	match       Matcher
}

// WithRemoveFirst deletes the target tree before copying.
func WithRemoveFirst() TreeOption {
	return func(o *treeOptions) { o.removeFirst = true }
}

// WithOverwrite replaces files already present in the target unless they
// hold the same bytes; those are left alone and not reported as copied.
// Without it an existing file fails the copy.
func WithOverwrite() TreeOption {
	return func(o *treeOptions) { o.overwrite = true }
}

// WithMatcher restricts the copy to entries m accepts.
func WithMatcher(m Matcher) TreeOption {
	return func(o *treeOptions) { o.match = m }
}

// CopyTree copies every regular file below root into the host directory
// target, keeping relative paths. It returns the relative paths copied, in
// walk order. When root is a directory tree that contains target, nothing
// below target is copied. Archives are only ever read, so an archive's root
// entry is never touched.
func CopyTree(root *namespace.Root, target string, opts ...TreeOption) ([]string, error) {
	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrExpectedDirectory, target)
	case o.removeFirst:
		if err := DeleteTree(target); err != nil {
			return nil, err
		}
	}

	skip, hasSkip := root.HostRel(target)

	var copied []string
	err = root.Walk(func(e namespace.Entry) error {
		rel := e.Rel()
		if rel == "" {
			rel = e.Display()
		}
		if hasSkip && Within(rel, skip) {
			return nil
		}
		if o.match != nil && !o.match(rel) {
			return nil
		}
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if o.overwrite {
			changed, err := CopyIfChanged(e, dest)
			if changed {
				copied = append(copied, rel)
			}
			return err
		}
		if _, err := os.Lstat(dest); err == nil {
			return copyError(e, dest, fs.ErrExist)
		}
		if err := Copy(e, dest); err != nil {
			return err
		}
		copied = append(copied, rel)
		return nil
	})
	return copied, err
}

// Within reports whether the slash separated rel is dir or lies below it.
// The empty dir contains everything.
func Within(rel, dir string) bool {
	return dir == "" || rel == dir || strings.HasPrefix(rel, dir+"/")
}

// DeleteTree removes the host directory tree at dir. A missing dir is not an
// error, a regular file is.
func DeleteTree(dir string) error {
	info, err := os.Lstat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrExpectedDirectory, dir)
	}
	return os.RemoveAll(dir)
}
