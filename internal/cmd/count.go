package cmd

import (
	"fmt"

	"github.com/dendrascience/dendra-archive-diff/namespace"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand for the jardiff CLI.
// It counts the regular files an input would be walked for.
func NewCountCmd() *cobra.Command {
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "count SPEC",
		Short: "Count files in a directory tree or archive",
		Long: `Count the regular files below SPEC.

SPEC is resolved the same way the differ resolves its inputs, so
"app.jar!/lib" counts only the entries below lib/ in app.jar. The count
is the number of files the differ would compare when SPEC is LEFT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, args[0], showProgress)
		},
	}

	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress every 10,000 files")

	return cmd
}

func runCount(cmd *cobra.Command, spec string, showProgress bool) error {
	root, err := namespace.Resolve(spec, namespace.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer root.Close()

	out := cmd.OutOrStdout()
	count := 0
	err = root.Walk(func(namespace.Entry) error {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		count++
		if showProgress && count%10000 == 0 {
			fmt.Fprintf(out, "Progress: %d files counted\n", count)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("counting files in %s: %w", spec, err)
	}

	fmt.Fprintf(out, "Total files: %d\n", count)
	return nil
}
