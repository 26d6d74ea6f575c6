// pysync merges, diffs and documents Python modules symbol by symbol.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phobologic/pysync/internal/config"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dir        string
	configPath string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func run(args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pysync",
		Short:         "Merge, diff and document Python modules by symbol",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetVersionTemplate("pysync {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVarP(&a.dir, "dir", "C", ".", "run as if started in this directory")
	pf.StringVar(&a.configPath, "config", "", "config file (default <dir>/"+config.FileName+")")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.graphCmd(),
		a.diffCmd(),
		a.mergeCmd(),
		a.changelogCmd(),
		a.bumpCmd(),
		a.initCmd(),
	)
	return root
}

// setup loads configuration and installs the logger. Flags win over the
// config file.
func (a *app) setup() error {
	info, err := os.Stat(a.dir)
	if err != nil {
		return fmt.Errorf("dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", a.dir)
	}

	path := a.configPath
	if path == "" {
		path = config.Find(a.dir)
	}
	a.cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(a.log)
	a.log.Debug("configuration loaded", slog.String("path", path), slog.Int("workers", a.cfg.Workers))
	return nil
}

// path resolves a command-line path against --dir.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}

// warn prints a best-effort failure for one file.
func (a *app) warn(path string, err error) {
	_, _ = fmt.Fprintf(a.stderr, "Warning: %s: %v\n", path, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q: want %s", format, strings.Join(allowed, " or "))
}
