package moddoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/phobologic/pysync/internal/pyast"
)

// CheckDate reports whether s is an ISO calendar date.
func CheckDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return nil
}

// Today returns the current local date in record form.
func Today() string {
	return time.Now().Format(dateLayout)
}

// ChangeLines turns the qualified names of a diff into update lines. Names
// are grouped under their dotted parent inside module, so A.d in pkg.mod is
// reported as d under pkg.mod.A. Groups are sorted.
func ChangeLines(module string, added, removed, changed []string) []string {
	type kinds struct{ added, removed, changed []string }
	groups := map[string]*kinds{}
	put := func(names []string, pick func(*kinds) *[]string) {
		for _, name := range names {
			group := module
			leaf := name
			if i := strings.LastIndexByte(name, '.'); i >= 0 {
				group = joinDotted(module, name[:i])
				leaf = name[i+1:]
			}
			k, ok := groups[group]
			if !ok {
				k = &kinds{}
				groups[group] = k
			}
			dst := pick(k)
			*dst = append(*dst, leaf)
		}
	}
	put(added, func(k *kinds) *[]string { return &k.added })
	put(removed, func(k *kinds) *[]string { return &k.removed })
	put(changed, func(k *kinds) *[]string { return &k.changed })

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, g := range names {
		k := groups[g]
		var parts []string
		for _, p := range []struct {
			verb  string
			names []string
		}{{"added", k.added}, {"removed", k.removed}, {"changed", k.changed}} {
			if len(p.names) == 0 {
				continue
			}
			sort.Strings(p.names)
			parts = append(parts, p.verb+" "+strings.Join(p.names, ", "))
		}
		lines = append(lines, g+" - "+strings.Join(parts, "; "))
	}
	return lines
}

func joinDotted(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "." + b
}

// ModulePath returns the dotted import path of a Python file given relative
// to the repository root. The longest matching source root is stripped and a
// package's __init__.py maps to the package itself.
func ModulePath(relPath string, sourceRoots []string) string {
	p := path.Clean(filepath.ToSlash(relPath))

	roots := append([]string(nil), sourceRoots...)
	sort.Slice(roots, func(i, j int) bool { return len(roots[i]) > len(roots[j]) })
	for _, root := range roots {
		root = strings.Trim(path.Clean(filepath.ToSlash(root)), "/")
		if root == "" || root == "." {
			continue
		}
		if rest, ok := strings.CutPrefix(p, root+"/"); ok {
			p = rest
			break
		}
	}

	p = strings.TrimSuffix(p, ".py")
	if p == "__init__" {
		return ""
	}
	p = strings.TrimSuffix(p, "/__init__")
	return strings.ReplaceAll(p, "/", ".")
}

// FromSource returns the record held in source's module docstring. When the
// module has no docstring, fallback is returned. An unstructured docstring
// becomes fallback's description.
func FromSource(ctx context.Context, source []byte, fallback Record) (*Record, error) {
	ds, err := pyast.FindDocstring(ctx, source)
	if err != nil {
		return nil, err
	}
	if fallback.Updates == nil {
		fallback.Updates = map[string][]string{}
	}
	if ds == nil {
		return &fallback, nil
	}
	rec, err := Parse(ds.Body)
	if errors.Is(err, ErrUnstructured) {
		slog.Debug("converting unstructured docstring")
		fallback.Description = strings.TrimSpace(ds.Body)
		return &fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Apply writes rec into source's module docstring, keeping the existing
// string prefix and quote style. A single-quoted docstring becomes triple
// quoted. A module without a docstring gets one after its leading comment
// lines.
func Apply(ctx context.Context, source []byte, rec *Record) ([]byte, error) {
	ds, err := pyast.FindDocstring(ctx, source)
	if err != nil {
		return nil, err
	}
	body := rec.Format()

	if ds != nil {
		prefix := strings.TrimRight(ds.Open, `'"`)
		quote, err := tripleQuote(ds.Close, body)
		if err != nil {
			return nil, err
		}
		text := prefix + quote + "\n" + body + quote

		out := make([]byte, 0, len(source)+len(text))
		out = append(out, source[:ds.Start]...)
		out = append(out, text...)
		out = append(out, source[ds.End:]...)
		return out, nil
	}

	quote, err := tripleQuote(singleTriple, body)
	if err != nil {
		return nil, err
	}

	at := 0
	for at < len(source) && source[at] == '#' {
		nl := strings.IndexByte(string(source[at:]), '\n')
		if nl < 0 {
			at = len(source)
			break
		}
		at += nl + 1
	}

	text := quote + "\n" + body + quote + "\n"
	var out []byte
	out = append(out, source[:at]...)
	if at > 0 && source[at-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, text...)
	out = append(out, source[at:]...)
	return out, nil
}

const (
	singleTriple = `'''`
	doubleTriple = `"""`
)

// tripleQuote picks the triple quote of closing's quote character unless
// body contains it, in which case the other one is used.
func tripleQuote(closing, body string) (string, error) {
	first, second := singleTriple, doubleTriple
	if strings.HasPrefix(closing, `"`) {
		first, second = second, first
	}
	for _, q := range []string{first, second} {
		if !strings.Contains(body, q) {
			return q, nil
		}
	}
	return "", fmt.Errorf("docstring text contains both %s and %s", first, second)
}
