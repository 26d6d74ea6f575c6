package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/phobologic/pysync/internal/pysync"
)

func (a *app) mergeCmd() *cobra.Command {
	var (
		output   string
		write    bool
		showDiff bool
	)
	cmd := &cobra.Command{
		Use:   "merge LEFT RIGHT",
		Short: "Add the definitions of RIGHT that LEFT lacks",
		Long: `Append to LEFT every function, class and top-level assignment of RIGHT
whose qualified name LEFT does not define. New methods go to the end of their
class. Names added at the top level are appended to LEFT's __all__ list when it
has one.

The merged module is printed in normalized form; comments are not kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && output != "" {
				return fmt.Errorf("--write and --output are mutually exclusive")
			}
			leftPath := a.path(args[0])
			left, err := os.ReadFile(leftPath)
			if err != nil {
				return err
			}
			right, err := os.ReadFile(a.path(args[1]))
			if err != nil {
				return err
			}
			merged, err := pysync.MergeSource(cmd.Context(), left, right)
			if err != nil {
				return err
			}
			merged += "\n"

			if showDiff {
				text, err := unifiedDiff(args[0], string(left), merged)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(a.stdout, text)
			}

			var dest string
			switch {
			case write:
				dest = leftPath
			case output != "":
				dest = a.path(output)
			default:
				if !showDiff {
					_, _ = fmt.Fprint(a.stdout, merged)
				}
				return nil
			}
			if err := os.WriteFile(dest, []byte(merged), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", dest, err)
			}
			a.log.Info("wrote merged module", slog.String("path", dest))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the merged module to this file")
	cmd.Flags().BoolVar(&write, "write", false, "overwrite LEFT with the merged module")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff of LEFT against the result")
	return cmd
}

// unifiedDiff renders the change from before to after as a git-style patch.
func unifiedDiff(path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
}
