package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dendrascience/dendra-archive-diff/differ"
	"github.com/dendrascience/dendra-archive-diff/util"
	"github.com/dendrascience/dendra-archive-diff/version"
	"github.com/spf13/cobra"
)

// UsageLine is printed when the differ is not given exactly two inputs.
const UsageLine = "Usage: jar1 jar2"

// NewRootCmd creates and returns the root cobra command for the jardiff CLI.
// Run with two inputs it compares them; subcommands inspect a single input.
func NewRootCmd() *cobra.Command {
	var (
		stageDir   string
		bufferSize int
		color      bool
	)

	rootCmd := &cobra.Command{
		Use:   "jardiff LEFT RIGHT",
		Short: "jardiff - Find the files that differ between two jars, zips or directory trees",
		Long: `jardiff compares two ZIP/JAR archives or directory trees file by file.

Every regular file under LEFT is looked up by its relative path under RIGHT.
When both exist and their bytes differ, the relative path is printed and the
LEFT file is copied into the stage directory (diffs/ by default), keeping its
relative path. Files that exist only on one side are ignored.

LEFT and RIGHT are directories or archives. An archive path may be followed
by !/ and a path inside it:
  app.jar
  app.jar!/
  dist/app.zip!/lib/classes

Use subcommands to inspect a single input:
  - mount: Browse an archive or directory through a read-only FUSE mount
  - count: Count the files an input contains
  - extract: Copy the files of an input into a directory
  - validate: Read every file of an input and report corrupt entries`,
		Version: version.GetFullVersion(),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				fmt.Fprintln(cmd.OutOrStdout(), UsageLine)
				return nil
			}
			d := differ.New(
				differ.WithStageDir(stageDir),
				differ.WithBufferSize(bufferSize),
				differ.WithColor(color),
				differ.WithOutput(cmd.OutOrStdout()),
				differ.WithLogger(newLogger(cmd)),
			)
			_, err := d.Run(cmd.Context(), args[0], args[1])
			return err
		},
	}

	rootCmd.Flags().StringVar(&stageDir, "stage-dir", differ.DefaultStageDir, "Directory mismatching files are copied into")
	rootCmd.Flags().IntVar(&bufferSize, "buffer-size", util.DefaultBufferSize, fmt.Sprintf("Comparison buffer per file in bytes (minimum %d)", util.MinBufferSize))
	rootCmd.Flags().BoolVar(&color, "color", false, "Colour reported paths by top-level directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	extractCmd := NewExtractCmd()
	validateCmd := NewValidateCmd()
	countCmd := NewCountCmd()

	mountCmd.GroupID = groupFilesystem
	extractCmd.GroupID = groupFilesystem
	countCmd.GroupID = groupUtilities
	validateCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(countCmd)

	return rootCmd
}

// newLogger builds the stderr logger for cmd, at debug level when --verbose
// is set.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
