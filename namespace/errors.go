package namespace

import "errors"

// Sentinel errors for package namespace.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrInputNotFound is returned when a spec names nothing that can be
	// opened, neither as a directory nor as an archive.
	ErrInputNotFound = errors.New("input not found")

	// ErrArchiveMalformed is returned when an archive exists but cannot be
	// parsed.
	ErrArchiveMalformed = errors.New("archive malformed")

	// ErrNotDirectory is returned when a directory is opened on a path that
	// is not one.
	ErrNotDirectory = errors.New("not a directory")
)
