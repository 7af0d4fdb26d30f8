// Package jartest builds zip and jar fixtures for tests.
package jartest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// File is one archive entry. A Name ending in "/" is written as a directory
// entry and Body is ignored. Entries are deflated unless Stored is set or
// Method names another registered compressor.
type File struct {
	Name   string
	Body   string
	Method uint16
	Stored bool
}

// Modified is the timestamp stamped on every fixture entry.
var Modified = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// Write creates an archive at path holding files in the given order. Parent
// directories of path are created.
func Write(t testing.TB, path string, files ...File) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	for _, file := range files {
		method := file.Method
		switch {
		case file.Stored:
			method = zip.Store
		case method == 0:
			method = zip.Deflate
		}
		h := &zip.FileHeader{Name: file.Name, Method: method, Modified: Modified}
		if len(file.Name) > 0 && file.Name[len(file.Name)-1] == '/' {
			h.Method = zip.Store
			if _, err := w.CreateHeader(h); err != nil {
				t.Fatal(err)
			}
			continue
		}
		h.SetMode(0o644)
		entry, err := w.CreateHeader(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(file.Body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// Files turns name/body pairs into deflated entries.
func Files(pairs ...string) []File {
	files := make([]File, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		files = append(files, File{Name: pairs[i], Body: pairs[i+1]})
	}
	return files
}

// Corrupt flips the first byte of the first occurrence of marker in the
// file at path, which for a stored entry breaks its checksum.
func Corrupt(t testing.TB, path, marker string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	i := bytes.Index(b, []byte(marker))
	if i < 0 {
		t.Fatalf("marker %q not found in %s", marker, path)
	}
	b[i] ^= 0xff
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

// Tree writes name/body pairs below dir as regular files.
func Tree(t testing.TB, dir string, pairs ...string) string {
	t.Helper()
	for i := 0; i+1 < len(pairs); i += 2 {
		p := filepath.Join(dir, filepath.FromSlash(pairs[i]))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(pairs[i+1]), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
