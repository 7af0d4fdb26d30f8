// Package browse mounts a resolved Root as a read-only FUSE filesystem.
//
// The mount mirrors the Root's tree: directories list their children in
// name order, regular files report the size and modification time stored in
// the directory or archive, and reads stream the entry through the Root.
// Nothing can be written. When the Root names a single file, the mount is a
// directory holding just that file.
//
// Inode numbers are handed out per relative path by Inodes and stay stable
// for the life of the mount.
package browse
