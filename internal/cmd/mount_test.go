package cmd

import (
	"path/filepath"
	"testing"

	"github.com/dendrascience/dendra-archive-diff/internal/jartest"
	"github.com/stretchr/testify/assert"
)

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		path1    string
		path2    string
		expected bool
	}{
		{
			name:     "identical paths",
			path1:    "/tmp/tree",
			path2:    "/tmp/tree",
			expected: true,
		},
		{
			name:     "path1 contains path2",
			path1:    "/tmp/tree/data",
			path2:    "/tmp/tree",
			expected: true,
		},
		{
			name:     "path2 contains path1",
			path1:    "/tmp/tree",
			path2:    "/tmp/tree/mount",
			expected: true,
		},
		{
			name:     "completely separate paths",
			path1:    "/tmp/tree",
			path2:    "/mnt/mount",
			expected: false,
		},
		{
			name:     "sibling directories",
			path1:    "/tmp/tree",
			path2:    "/tmp/mount",
			expected: false,
		},
		{
			name:     "shared name prefix",
			path1:    "/tmp/tree",
			path2:    "/tmp/tree2",
			expected: false,
		},
		{
			name:     "relative paths - overlapping",
			path1:    "tree",
			path2:    "tree/mount",
			expected: true,
		},
		{
			name:     "relative paths - separate",
			path1:    "tree",
			path2:    "mount",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pathsOverlap(tt.path1, tt.path2)
			if result != tt.expected {
				t.Errorf("pathsOverlap(%q, %q) = %v, expected %v", tt.path1, tt.path2, result, tt.expected)
			}
		})
	}
}

func TestMountRejectsOverlap(t *testing.T) {
	dir := jartest.Tree(t, t.TempDir(), "a.txt", "a")
	_, _, err := execute(t, "mount", dir, filepath.Join(dir, "mnt"))
	assert.ErrorIs(t, err, ErrMountOverlap)
	assert.NoDirExists(t, filepath.Join(dir, "mnt"))
}
