package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/pysync/internal/moddoc"
	"github.com/phobologic/pysync/internal/release"
	"github.com/phobologic/pysync/internal/vcs"
	pyversion "github.com/phobologic/pysync/internal/version"
)

type bumpOptions struct {
	file      string
	changelog string
	date      string
	message   string
	commit    bool
	tag       bool
}

func (a *app) bumpCmd() *cobra.Command {
	var opts bumpOptions
	validArgs := make([]string, len(pyversion.Parts))
	for i, p := range pyversion.Parts {
		validArgs[i] = string(p)
	}
	cmd := &cobra.Command{
		Use:   "bump major|minor|patch|release",
		Short: "Increment the project version",
		Long: `Increment the version in pyproject.toml (or --file) and optionally commit and
tag it. A tag implies a commit.

When the changelog file exists, an entry for the new version is added above
the previous ones, listing the files added, changed and removed since HEAD.
Naming --changelog explicitly creates the file when it is missing.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: validArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := pyversion.ParsePart(args[0])
			if err != nil {
				return err
			}
			if opts.date == "" {
				opts.date = moddoc.Today()
			}
			if err := moddoc.CheckDate(opts.date); err != nil {
				return err
			}
			if opts.file == "" {
				opts.file = a.cfg.VersionFile
			}
			return a.bump(cmd.Context(), part, opts, cmd.Flags().Changed("changelog"))
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "file holding the version (default from config)")
	f.StringVar(&opts.changelog, "changelog", release.FileName, "changelog to add the release to; empty to skip")
	f.StringVar(&opts.date, "date", "", "release date, YYYY-MM-DD (default today)")
	f.StringVarP(&opts.message, "message", "m", "", "release message (default \"Bump version to <version>\")")
	f.BoolVar(&opts.commit, "commit", false, "commit the version change")
	f.BoolVar(&opts.tag, "tag", false, "create an annotated v<version> tag")
	return cmd
}

func (a *app) bump(ctx context.Context, part pyversion.Part, opts bumpOptions, createChangelog bool) error {
	versionPath := a.path(opts.file)
	content, err := os.ReadFile(versionPath)
	if err != nil {
		return err
	}
	old, next, out, err := pyversion.BumpFile(content, part)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	message := opts.message
	if message == "" {
		message = fmt.Sprintf("Bump version to %s", next)
	}

	var repo *vcs.Repo
	openRepo := func() (*vcs.Repo, error) {
		if repo != nil {
			return repo, nil
		}
		var err error
		repo, err = vcs.Open(ctx, a.dir)
		return repo, err
	}

	changelogPath, existing, err := a.readChangelog(opts.changelog, createChangelog)
	if err != nil {
		return err
	}
	var notes string
	if changelogPath != "" {
		r, err := openRepo()
		if err != nil {
			return err
		}
		changes, err := r.ChangedFiles(ctx, "HEAD")
		if err != nil {
			return fmt.Errorf("listing changes for %s: %w", opts.changelog, err)
		}
		skip := []string{repoPath(r, changelogPath), repoPath(r, versionPath)}
		notes = release.Prepend(existing, release.Entry{
			Version: next.String(),
			Date:    opts.date,
			Message: message,
			Changes: release.Relevant(changes, skip...),
		})
	}

	if err := os.WriteFile(versionPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.file, err)
	}
	paths := []string{versionPath}
	if changelogPath != "" {
		if err := os.WriteFile(changelogPath, []byte(notes), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.changelog, err)
		}
		paths = append(paths, changelogPath)
		a.log.Info("updated changelog", slog.String("path", changelogPath))
	}
	_, _ = fmt.Fprintf(a.stdout, "%s -> %s\n", old, next)

	if !opts.commit && !opts.tag {
		return nil
	}
	r, err := openRepo()
	if err != nil {
		return err
	}
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rels = append(rels, repoPath(r, p))
	}
	if err := r.Commit(ctx, message, rels...); err != nil {
		return err
	}
	if opts.tag {
		name := "v" + next.String()
		if err := r.Tag(ctx, name, "Release "+name); err != nil {
			return err
		}
		a.log.Info("tagged release", slog.String("tag", name))
	}
	return nil
}

// readChangelog returns the resolved changelog path and its content. The
// path is empty when no changelog should be written: the option is empty, or
// the file is missing and create is unset.
func (a *app) readChangelog(name string, create bool) (string, string, error) {
	if name == "" {
		return "", "", nil
	}
	p := a.path(name)
	data, err := os.ReadFile(p)
	switch {
	case err == nil:
		return p, string(data), nil
	case errors.Is(err, os.ErrNotExist) && create:
		return p, "", nil
	case errors.Is(err, os.ErrNotExist):
		a.log.Debug("no changelog to update", slog.String("path", p))
		return "", "", nil
	}
	return "", "", err
}

// repoPath returns p relative to the repository root. The parent directory
// is resolved instead of p itself, so p need not exist yet.
func repoPath(r *vcs.Repo, p string) string {
	dir, err := r.Rel(filepath.Dir(p))
	if err != nil {
		return filepath.ToSlash(p)
	}
	return path.Join(dir, filepath.Base(p))
}
