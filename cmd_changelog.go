package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pysync/internal/discover"
	"github.com/phobologic/pysync/internal/moddoc"
	"github.com/phobologic/pysync/internal/model"
	"github.com/phobologic/pysync/internal/pysync"
	"github.com/phobologic/pysync/internal/toon"
	"github.com/phobologic/pysync/internal/vcs"
)

type changelogOptions struct {
	rev    string
	date   string
	dryRun bool
	all    bool
	format string
}

func (a *app) changelogCmd() *cobra.Command {
	var opts changelogOptions
	cmd := &cobra.Command{
		Use:   "changelog [FILES...]",
		Short: "Record symbol changes in each module's docstring",
		Long: `Compare each Python file against its version at --rev and append one
update line per changed class or module to the Updates section of the module
docstring, under --date. Without FILES every Python file changed since --rev
is processed, untracked ones included; --all processes every Python file in
the repository instead. A second run for the same date replaces the lines it
wrote earlier for the same module or class.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.date == "" {
				opts.date = moddoc.Today()
			}
			if err := moddoc.CheckDate(opts.date); err != nil {
				return err
			}
			if err := checkFormat(opts.format, "text", "toon"); err != nil {
				return err
			}
			if opts.all && len(args) > 0 {
				return fmt.Errorf("--all and FILES are mutually exclusive")
			}
			return a.changelog(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.rev, "rev", "HEAD", "revision to compare against")
	f.StringVar(&opts.date, "date", "", "update date, YYYY-MM-DD (default today)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the docstring changes instead of writing them")
	f.BoolVar(&opts.all, "all", false, "process every Python file in the repository")
	f.StringVar(&opts.format, "format", "text", "summary format: text or toon")
	return cmd
}

// fileChange is the outcome of one file; diff is set for dry runs.
type fileChange struct {
	update model.FileUpdate
	diff   string
	err    error
}

func (a *app) changelog(ctx context.Context, args []string, opts changelogOptions) error {
	repo, err := vcs.Open(ctx, a.dir)
	if err != nil {
		return err
	}
	exclude, err := discover.NewMatcher(a.cfg.Exclude)
	if err != nil {
		return err
	}

	var rels []string
	switch {
	case opts.all:
		files, err := discover.Files(repo.Root, exclude)
		if err != nil {
			return err
		}
		for _, f := range files {
			rels = append(rels, f.Path)
		}
	case len(args) > 0:
		for _, arg := range args {
			rel, err := repo.Rel(a.path(arg))
			if err != nil {
				return err
			}
			rels = append(rels, rel)
		}
	default:
		changes, err := repo.ChangedFiles(ctx, opts.rev)
		if err != nil {
			return err
		}
		for _, c := range changes {
			if c.Status != vcs.Deleted {
				rels = append(rels, c.Path)
			}
		}
	}
	rels = discover.Filter(rels, exclude)
	if len(rels) == 0 {
		a.log.Info("no python files to update", slog.String("rev", opts.rev))
	}

	results := make([]fileChange, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, rel := range rels {
		i, rel := i, rel
		g.Go(func() error {
			results[i] = a.changelogFile(gctx, repo, rel, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report := &model.ChangelogReport{Date: opts.date, Rev: opts.rev}
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			a.warn(r.update.Path, r.err)
			r.update.Error = r.err.Error()
		}
		report.Files = append(report.Files, r.update)
		if opts.dryRun && r.diff != "" {
			_, _ = fmt.Fprint(a.stdout, r.diff)
		}
	}

	switch {
	case opts.format == "toon":
		_, _ = fmt.Fprintln(a.stdout, toon.EncodeChangelog(report))
	case !opts.dryRun:
		for _, f := range report.Files {
			if f.Error == "" && len(f.Lines) > 0 {
				_, _ = fmt.Fprintf(a.stdout, "%s: %d update(s)\n", f.Path, len(f.Lines))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(rels))
	}
	return nil
}

// changelogFile diffs one file against rev and writes the update lines into
// its docstring. A line replaces the one recorded for the same date and group.
func (a *app) changelogFile(ctx context.Context, repo *vcs.Repo, rel string, opts changelogOptions) fileChange {
	res := fileChange{update: model.FileUpdate{
		Path:   rel,
		Module: moddoc.ModulePath(rel, a.cfg.SourceRoots),
		Lines:  []string{},
	}}
	fail := func(err error) fileChange {
		res.err = err
		return res
	}

	abs := filepath.Join(repo.Root, filepath.FromSlash(rel))
	current, err := os.ReadFile(abs)
	if err != nil {
		return fail(err)
	}
	previous, err := repo.Show(ctx, opts.rev, rel)
	if errors.Is(err, vcs.ErrNotInRevision) {
		previous = nil
	} else if err != nil {
		return fail(err)
	}

	diff, err := pysync.DiffSource(ctx, previous, current)
	if err != nil {
		return fail(err)
	}
	if diff.Empty() {
		a.log.Debug("no symbol changes", slog.String("file", rel))
		return res
	}

	lines := moddoc.ChangeLines(res.update.Module, diff.Added, diff.Removed, diff.Changed)
	rec, err := moddoc.FromSource(ctx, current, *moddoc.New(a.cfg.Author, a.cfg.Email, opts.date))
	if err != nil {
		return fail(err)
	}
	recorded := make(map[string]struct{}, len(rec.Updates[opts.date]))
	for _, l := range rec.Updates[opts.date] {
		recorded[l] = struct{}{}
	}
	if rec.AddUpdates(opts.date, lines...) == 0 {
		a.log.Debug("updates already recorded", slog.String("file", rel))
		return res
	}
	for _, l := range lines {
		if _, ok := recorded[l]; !ok {
			res.update.Lines = append(res.update.Lines, l)
		}
	}

	out, err := moddoc.Apply(ctx, current, rec)
	if err != nil {
		return fail(err)
	}
	if opts.dryRun {
		res.diff, err = unifiedDiff(rel, string(current), string(out))
		if err != nil {
			return fail(err)
		}
		return res
	}
	if err := os.WriteFile(abs, out, 0o644); err != nil {
		return fail(err)
	}
	a.log.Debug("updated docstring", slog.String("file", rel), slog.Int("lines", len(res.update.Lines)))
	return res
}
