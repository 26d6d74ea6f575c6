package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	// Non-Python file should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.py", "secret")

	entries, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/util.py", "main.py"}, paths(entries))
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, "pkg.egg-info/setup.py", "pass")

	entries, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, paths(entries))
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*_pb2.py\n")
	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "generated/out.py", "pass")
	writeFile(t, dir, "api_pb2.py", "pass")

	entries, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, paths(entries))
}

func TestDiscoverExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/pkg/mod.py", "pass")
	writeFile(t, dir, "src/pkg/migrations/0001.py", "pass")
	writeFile(t, dir, "tests/test_mod.py", "pass")

	m, err := NewMatcher([]string{"**/migrations/**", "tests/*"})
	require.NoError(t, err)

	entries, err := Files(dir, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/pkg/mod.py"}, paths(entries))
}

func TestNewMatcherInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewMatcher([]string{"src/[a"})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher([]string{"docs/**"})
	require.NoError(t, err)
	got := Filter([]string{"b.py", "docs/conf.py", "README.md", "a.py"}, m)
	assert.Equal(t, []string{"b.py", "a.py"}, got)
	assert.Equal(t, []string{"x.py"}, Filter([]string{"x.py"}, nil))
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")

	err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py"}, paths(entries))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
