package browse

import "sync"

// RootInode is the inode of the mount's top directory.
const RootInode uint64 = 1

// Inodes hands out one stable inode number per relative path, so the kernel
// sees the same number for a file across lookups and directory listings.
type Inodes struct {
	mu      sync.Mutex
	highest uint64
	byPath  map[string]uint64
}

// NewInodes returns a registry where "" is RootInode.
func NewInodes() *Inodes {
	return &Inodes{
		highest: RootInode,
		byPath:  map[string]uint64{"": RootInode},
	}
}

// Get returns the inode for rel, allocating the next free number the first
// time rel is seen.
func (i *Inodes) Get(rel string) uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	if ino, ok := i.byPath[rel]; ok {
		return ino
	}
	i.highest++
	i.byPath[rel] = i.highest
	return i.highest
}
