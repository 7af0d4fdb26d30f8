package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Separator splits an archive path from the path inside it, as in
// "lib/app.jar!/META-INF/MANIFEST.MF".
const Separator = "!/"

var archiveSuffix = regexp.MustCompile(`(?i)\.(zip|jar)(!/.*)?$`)

// SplitSpec splits spec into the archive path and the subpath inside the
// archive. ok is false when spec does not name a .zip or .jar file. The
// first suffix match wins, so "a.jar!/b.jar" addresses b.jar inside a.jar.
func SplitSpec(spec string) (archive, inner string, ok bool) {
	loc := archiveSuffix.FindStringIndex(spec)
	if loc == nil {
		return "", "", false
	}
	cut := loc[0] + len(".zip")
	return spec[:cut], strings.TrimPrefix(spec[cut:], Separator), true
}

// Resolve turns a user supplied spec into a Root. Specs ending in .zip or
// .jar, optionally followed by "!/" and a path inside the archive, open the
// archive. When that archive path is really a directory, the directory is
// walked instead and the inner path is ignored. Anything else is a
// directory on the host filesystem, a file whose content is a zip, or a
// single host file.
func Resolve(spec string, opts ...Option) (*Root, error) {
	o := newOptions(opts)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInputNotFound)
	}

	if archive, inner, ok := SplitSpec(spec); ok {
		if isDir(archive) {
			o.logger.Debug("archive path is a directory", "path", archive, "ignored", inner)
			return openDirRoot(archive, opts)
		}
		ns, err := OpenArchive(archive, opts...)
		if err != nil {
			return nil, err
		}
		return rootAt(ns, inner)
	}

	info, err := os.Stat(spec)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", spec, err)
		}
		// "build/!/" names an exploded archive the same way "build.jar!/" would.
		if i := strings.Index(spec, Separator); i > 0 && isDir(spec[:i]) {
			o.logger.Debug("archive path is a directory", "path", spec[:i], "ignored", spec[i+len(Separator):])
			return openDirRoot(spec[:i], opts)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, spec, err)
	}
	if info.IsDir() {
		return openDirRoot(spec, opts)
	}
	if info.Mode().IsRegular() && sniffZip(spec) {
		o.logger.Debug("opening zip content without archive suffix", "path", spec)
		ns, err := OpenArchive(spec, opts...)
		if err != nil {
			return nil, err
		}
		return NewRoot(ns, "."), nil
	}
	// Any other file is a tree of one: its parent directory, rooted at it.
	ns, err := OpenDir(filepath.Dir(spec), opts...)
	if err != nil {
		return nil, err
	}
	return rootAt(ns, filepath.ToSlash(filepath.Base(spec)))
}

func openDirRoot(dir string, opts []Option) (*Root, error) {
	ns, err := OpenDir(dir, opts...)
	if err != nil {
		return nil, err
	}
	return NewRoot(ns, "."), nil
}

// rootAt anchors a Root at inner, which must exist in ns. ns is closed when
// it does not.
func rootAt(ns Namespace, inner string) (*Root, error) {
	base := cleanName(inner)
	if _, err := ns.Stat(base); err != nil {
		closeErr := ns.Close()
		return nil, errors.Join(fmt.Errorf("%w: %s%s%s", ErrInputNotFound, ns.Location(), Separator, base), closeErr)
	}
	return NewRoot(ns, base), nil
}

func isDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

// sniffZip reports whether the file's content belongs to the zip family,
// which covers jar, war, apk and office documents.
func sniffZip(name string) bool {
	mt, err := mimetype.DetectFile(name)
	if err != nil {
		return false
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}
