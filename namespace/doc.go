// Package namespace presents ZIP/JAR archives and directory trees as one
// read-only, hierarchical view.
//
// A spec such as "app.jar", "app.jar!/META-INF" or "build/classes" is turned
// into a Root by Resolve. A Root walks its regular files depth first and
// resolves relative paths into Entries, which can be stat'ed and opened
// regardless of the backend. Relative paths are always slash separated, so
// an entry walked on one side can be looked up on the other.
//
// Archive roots hold the archive file open and must be closed. Directory
// roots go through a go-billy filesystem bound to the directory, and
// symbolic links are only followed while they stay inside it.
package namespace
