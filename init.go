package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/pysync/internal/config"
)

const configHeader = `# pysync configuration.
#
# source_roots are stripped from file paths to form module names.
# exclude holds doublestar globs matched against repository-relative paths.
# workers defaults to the number of CPUs.
`

// initCmd implements `pysync init`, which writes a default .pysync.yaml.
func (a *app) initCmd() *cobra.Command {
	var (
		dryRun bool
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a default " + config.FileName,
		Long: `Write a default configuration file. PATH defaults to ` + config.FileName + `
in --dir. An existing file is left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := generateConfig(a.cfg)
			if err != nil {
				return err
			}
			if dryRun {
				_, _ = fmt.Fprint(a.stdout, content)
				return nil
			}

			path := config.Find(a.dir)
			if len(args) > 0 {
				path = a.path(args[0])
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(a.stderr, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// generateConfig renders cfg for a fresh config file. Workers is left out
// so the file stays portable across machines.
func generateConfig(cfg config.Config) (string, error) {
	cfg.Workers = 0
	data, err := config.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return configHeader + "\n" + string(data), nil
}
