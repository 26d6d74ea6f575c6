// Package vcs runs the git commands pysync needs.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"
)

var (
	// ErrNotRepository is returned when a directory is not inside a git work tree.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNotInRevision is returned when a path does not exist at a revision.
	ErrNotInRevision = errors.New("path not in revision")
)

const commandTimeout = 30 * time.Second

// Status describes how a file changed between a revision and the work tree.
type Status string

const (
	Added    Status = "added"
	Deleted  Status = "deleted"
	Modified Status = "modified"
)

// Change is one file touched since a revision. Path is relative to the
// repository root and uses forward slashes.
type Change struct {
	Path   string
	Status Status
}

// Repo is a git work tree.
type Repo struct {
	Root string
}

// Open finds the work tree containing dir.
func Open(ctx context.Context, dir string) (*Repo, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("%w: git not installed", ErrNotRepository)
	}
	r := &Repo{Root: dir}
	out, err := r.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	r.Root = filepath.FromSlash(strings.TrimSpace(string(out)))
	return r, nil
}

// Rel returns path relative to the repository root in forward-slash form.
func (r *Repo) Rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(r.Root)
	if err != nil {
		root = r.Root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", path, r.Root)
	}
	return filepath.ToSlash(rel), nil
}

// Show returns the content of rel at rev.
func (r *Repo) Show(ctx context.Context, rev, rel string) ([]byte, error) {
	object := rev + ":" + rel
	if _, err := r.git(ctx, "cat-file", "-e", object); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInRevision, object)
	}
	return r.git(ctx, "show", object)
}

// ChangedFiles lists the files that differ between rev and the work tree,
// sorted by path. Untracked files that git does not ignore are reported as
// added.
func (r *Repo) ChangedFiles(ctx context.Context, rev string) ([]Change, error) {
	out, err := r.git(ctx, "diff", "--no-color", "--no-ext-diff", "--no-renames",
		"--src-prefix=a/", "--dst-prefix=b/", rev, "--")
	if err != nil {
		return nil, err
	}
	changes, err := parseChanges(out)
	if err != nil {
		return nil, err
	}
	untracked, err := r.UntrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		seen[c.Path] = struct{}{}
	}
	for _, path := range untracked {
		if _, ok := seen[path]; !ok {
			changes = append(changes, Change{Path: path, Status: Added})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// UntrackedFiles lists the files in the work tree that are neither tracked
// nor ignored, sorted by path.
func (r *Repo) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(string(out), "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func parseChanges(patch []byte) ([]Change, error) {
	files, err := diff.NewMultiFileDiffReader(bytes.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	changes := make([]Change, 0, len(files))
	for _, fd := range files {
		orig := strings.TrimPrefix(fd.OrigName, "a/")
		name := strings.TrimPrefix(fd.NewName, "b/")
		switch {
		case fd.OrigName == "/dev/null" || fd.OrigName == "":
			changes = append(changes, Change{Path: name, Status: Added})
		case fd.NewName == "/dev/null" || fd.NewName == "":
			changes = append(changes, Change{Path: orig, Status: Deleted})
		default:
			changes = append(changes, Change{Path: name, Status: Modified})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// Commit stages paths and commits them with message.
func (r *Repo) Commit(ctx context.Context, message string, paths ...string) error {
	if len(paths) > 0 {
		args := append([]string{"add", "--"}, paths...)
		if _, err := r.git(ctx, args...); err != nil {
			return err
		}
	}
	_, err := r.git(ctx, "commit", "-m", message)
	return err
}

// Tag creates an annotated tag at HEAD.
func (r *Repo) Tag(ctx context.Context, name, message string) error {
	_, err := r.git(ctx, "tag", "-a", name, "-m", message)
	return err
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return out, nil
}
