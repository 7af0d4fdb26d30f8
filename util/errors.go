package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// I/O failures on a pair of files
	ErrRead = errors.New("read error")
	ErrCopy = errors.New("copy error")

	// File and directory errors
	ErrExpectedFile      = errors.New("expected file, got directory")
	ErrExpectedDirectory = errors.New("expected directory but got file")
)

// PairError reports a failure involving two files, so the message names
// both of them.
type PairError struct {
	Kind   error
	Source string
	Target string
	Err    error
}

func (e *PairError) Error() string {
	arrow := "<->"
	if errors.Is(e.Kind, ErrCopy) {
		arrow = "->"
	}
	return fmt.Sprintf("%v: %s %s %s: %v", e.Kind, e.Source, arrow, e.Target, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *PairError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func readError(a, b fmt.Stringer, err error) error {
	return &PairError{Kind: ErrRead, Source: a.String(), Target: b.String(), Err: err}
}

func copyError(source fmt.Stringer, target string, err error) error {
	return &PairError{Kind: ErrCopy, Source: source.String(), Target: target, Err: err}
}
