// Package main provides the jardiff command-line interface.
//
// jardiff compares two ZIP/JAR archives or directory trees. Every regular
// file of the first input is looked up by relative path in the second, and
// files whose bytes differ are printed and copied into a diffs/ directory
// for inspection. Either input may point inside an archive with the
// "app.jar!/inner/path" form.
//
// The binary also carries subcommands that work on a single input:
//   - mount: Browse an archive or directory through a read-only FUSE mount
//   - count: Count the files an input contains
//   - extract: Copy the files of an input into a directory
//   - validate: Read every file of an input and report corrupt entries
package main
