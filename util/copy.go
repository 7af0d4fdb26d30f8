package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// HostFile is a path on the host filesystem used as a Source.
type HostFile string

// Size implements Source.
func (f HostFile) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Open implements Source.
func (f HostFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// Stat describes the file, following symbolic links.
func (f HostFile) Stat() (fs.FileInfo, error) { return os.Stat(string(f)) }

func (f HostFile) String() string { return string(f) }

type statter interface {
	Stat() (fs.FileInfo, error)
}

// Copy writes the contents of source to target, creating target's missing
// parent directories and replacing any file already there. The bytes go to
// a uniquely named sibling first and are renamed into place, so target is
// never left half written. When source can describe itself, its permission
// bits and modification time are carried over.
func Copy(source Source, target string) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return copyError(source, target, err)
	}

	in, err := source.Open()
	if err != nil {
		return copyError(source, target, err)
	}
	defer in.Close()

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString()))
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return copyError(source, target, err)
	}
	_, err = io.Copy(out, in)
	err = errors.Join(err, out.Close())
	if err == nil {
		err = preserveAttributes(source, tmp)
	}
	if err == nil {
		err = os.Rename(tmp, target)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return copyError(source, target, err)
	}
	return nil
}

// preserveAttributes copies permissions and modification time from source
// to name. Sources without attributes are left alone.
func preserveAttributes(source Source, name string) error {
	s, ok := source.(statter)
	if !ok {
		return nil
	}
	info, err := s.Stat()
	if err != nil {
		return nil
	}
	if perm := info.Mode().Perm(); perm != 0 {
		if err := os.Chmod(name, perm); err != nil {
			return err
		}
	}
	if mod := info.ModTime(); !mod.IsZero() {
		return os.Chtimes(name, mod, mod)
	}
	return nil
}

// CopyIfChanged copies source to target unless target already holds the
// same bytes. It reports whether a copy was made.
func CopyIfChanged(source Source, target string, opts ...EqualOption) (bool, error) {
	info, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, copyError(source, target, err)
	case info.IsDir():
		return false, copyError(source, target, ErrExpectedFile)
	default:
		same, err := Equal(source, HostFile(target), opts...)
		if err != nil {
			return false, err
		}
		if same {
			return false, nil
		}
	}
	if err := Copy(source, target); err != nil {
		return false, err
	}
	return true, nil
}
