// Package cmd provides the command-line interface implementation for jardiff.
//
// This package contains the root command, which runs the differ on two
// inputs, and the subcommands that work on a single input. It uses the
// Cobra library for command structure and is executed through Fang for
// styling, version reporting and signal handling.
//
// The package is organized into the following commands:
//   - root: The differ itself, plus flag and subcommand wiring
//   - mount: Read-only FUSE view of an input
//   - count: File counting
//   - extract: Tree copy from an input into a host directory
//   - validate: Full read of every file to find corrupt entries
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command.
//
// Inputs are resolved with the namespace package; comparison and copying
// live in the differ and util packages.
package cmd
