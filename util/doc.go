// Package util provides the file operations the differ is built from.
//
// Equal is the binary equality engine: it rejects sources of different
// length without opening them and otherwise streams both through fixed
// buffers, stopping at the first differing byte. Copy stages a single file
// on the host filesystem, creating parents and carrying over permissions and
// modification time. CopyIfChanged, CopyTree and DeleteTree build on those
// two for whole trees.
//
// Failures touching two files are reported as *PairError, which matches
// ErrRead or ErrCopy under errors.Is and names both operands.
package util
