package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/pysync/internal/model"
	"github.com/phobologic/pysync/internal/pyast"
	"github.com/phobologic/pysync/internal/symbols"
	"github.com/phobologic/pysync/internal/toon"
)

func (a *app) graphCmd() *cobra.Command {
	var (
		serialize bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Print the function graph of a Python module",
		Long: `Print the nested functions and classes of a Python module.

With --serialize every function is printed as normalized source instead of
being expanded into its nested definitions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "yaml", "toon"); err != nil {
				return err
			}
			source, err := os.ReadFile(a.path(args[0]))
			if err != nil {
				return err
			}
			mod, err := pyast.Parse(cmd.Context(), source)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			g, defs, err := symbols.Definitions(mod, serialize)
			if err != nil {
				return err
			}
			if format == "toon" {
				_, _ = fmt.Fprintln(a.stdout, toon.EncodeGraph(graphReport(args[0], defs)))
				return nil
			}
			out, err := yaml.Marshal(g)
			if err != nil {
				return err
			}
			_, _ = a.stdout.Write(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&serialize, "serialize", false, "print functions as source")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or toon")
	return cmd
}

// graphReport lists the nodes of a function graph with their kinds.
func graphReport(file string, defs []symbols.Definition) *model.GraphReport {
	r := &model.GraphReport{File: file, Symbols: make([]model.GraphEntry, 0, len(defs))}
	for _, d := range defs {
		kind := model.Function
		if d.Kind == pyast.ClassDef {
			kind = model.Class
		}
		r.Symbols = append(r.Symbols, model.GraphEntry{Name: d.Name, Kind: kind, Source: d.Source})
	}
	return r
}
