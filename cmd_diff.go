package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/phobologic/pysync/internal/model"
	"github.com/phobologic/pysync/internal/pysync"
	"github.com/phobologic/pysync/internal/toon"
)

var changeStyles = map[model.ChangeKind]lipgloss.Style{
	model.Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	model.Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	model.Changed: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
}

var changeMarks = map[model.ChangeKind]string{
	model.Added:   "+",
	model.Removed: "-",
	model.Changed: "~",
}

func (a *app) diffCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "List functions added, removed or changed between two versions of a module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "text", "toon"); err != nil {
				return err
			}
			before, err := os.ReadFile(a.path(args[0]))
			if err != nil {
				return err
			}
			after, err := os.ReadFile(a.path(args[1]))
			if err != nil {
				return err
			}
			res, err := pysync.DiffSource(cmd.Context(), before, after)
			if err != nil {
				return err
			}
			report := model.NewDiffReport(args[0], args[1], res.Added, res.Removed, res.Changed)

			if format == "toon" {
				_, _ = fmt.Fprintln(a.stdout, toon.EncodeDiff(report))
				return nil
			}
			a.printChanges(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or toon")
	return cmd
}

func (a *app) printChanges(r *model.DiffReport) {
	color := isTerminal(a.stdout)
	for _, c := range r.Changes {
		line := changeMarks[c.Kind] + " " + c.Name
		if color {
			line = changeStyles[c.Kind].Render(line)
		}
		_, _ = fmt.Fprintln(a.stdout, line)
	}
}
