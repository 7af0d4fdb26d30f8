package cmd

import (
	"fmt"

	"github.com/dendrascience/dendra-archive-diff/namespace"
	"github.com/dendrascience/dendra-archive-diff/util"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates and returns the extract subcommand for the jardiff
// CLI. It copies the files of an input into a host directory.
func NewExtractCmd() *cobra.Command {
	var (
		includes  []string
		clean     bool
		overwrite bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "extract SPEC DEST",
		Short: "Copy the files of an archive or directory tree into a directory",
		Long: `Copy every regular file below SPEC into DEST, keeping relative paths.

Modification times and permissions are carried over. --include limits the
copy to files matching any of the given glob patterns; a pattern without a
slash is matched against the file name, one with a slash against the whole
relative path. Existing files in DEST stop the copy unless --overwrite is
given, in which case only files whose bytes differ are rewritten. --clean
empties DEST first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []util.TreeOption
			if len(includes) > 0 {
				m, err := util.MatchAny(includes...)
				if err != nil {
					return err
				}
				opts = append(opts, util.WithMatcher(m))
			}
			if clean {
				opts = append(opts, util.WithRemoveFirst())
			}
			if overwrite {
				opts = append(opts, util.WithOverwrite())
			}
			return runExtract(cmd, args[0], args[1], quiet, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&includes, "include", "i", nil, "Only copy files matching this glob (repeatable)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Delete DEST before copying")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files already present in DEST")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary")

	return cmd
}

func runExtract(cmd *cobra.Command, spec, dest string, quiet bool, opts []util.TreeOption) error {
	root, err := namespace.Resolve(spec, namespace.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer root.Close()

	copied, err := util.CopyTree(root, dest, opts...)
	out := cmd.OutOrStdout()
	if !quiet {
		for _, rel := range copied {
			fmt.Fprintln(out, rel)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Extracted %d files from %s to %s\n", len(copied), root, dest)
	return nil
}
