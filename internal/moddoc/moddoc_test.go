package moddoc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
Author:         Chris Carl
Email:          chris@example.com
Date:           2024-12-09
Description:

core.ast is about syntax trees.
Second paragraph line.

Updates:
    2024-12-09 - core.ast - initial commit
                 core.ast - second line
    2024-12-10 - core.ast - added diff, merge
`

func TestParse(t *testing.T) {
	t.Parallel()

	r, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "Chris Carl", r.Author)
	assert.Equal(t, "chris@example.com", r.Email)
	assert.Equal(t, "2024-12-09", r.Date)
	assert.Equal(t, "core.ast is about syntax trees.\nSecond paragraph line.", r.Description)
	assert.Equal(t, map[string][]string{
		"2024-12-09": {"core.ast - initial commit", "core.ast - second line"},
		"2024-12-10": {"core.ast - added diff, merge"},
	}, r.Updates)
	assert.Empty(t, r.Trailer)
}

func TestParseTrailer(t *testing.T) {
	t.Parallel()

	r, err := Parse("Author: a\nUpdates:\n    2024-01-01 - m - x\n\nNotes kept here.\n  indented too\n")
	require.NoError(t, err)
	assert.Equal(t, "a", r.Author)
	assert.Equal(t, []string{"m - x"}, r.Updates["2024-01-01"])
	assert.Equal(t, "Notes kept here.\n  indented too", r.Trailer)
}

func TestParseUnstructured(t *testing.T) {
	t.Parallel()

	_, err := Parse("Just a sentence about the module.\n")
	assert.ErrorIs(t, err, ErrUnstructured)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	r, err := Parse(sample)
	require.NoError(t, err)

	want := `Author:         Chris Carl
Email:          chris@example.com
Date:           2024-12-09
Description:

core.ast is about syntax trees.
Second paragraph line.

Updates:
    2024-12-10 - core.ast - added diff, merge
    2024-12-09 - core.ast - initial commit
                 core.ast - second line
`
	assert.Equal(t, want, r.Format())

	again, err := Parse(r.Format())
	require.NoError(t, err)
	assert.Equal(t, r, again)
}

func TestFormatEmpty(t *testing.T) {
	t.Parallel()

	r := New("", "", "2024-01-01")
	assert.Equal(t, "Author:\nEmail:\nDate:           2024-01-01\nDescription:\n\nUpdates:\n", r.Format())
}

func TestAddUpdates(t *testing.T) {
	t.Parallel()

	r := New("a", "a@example.com", "2024-01-01")
	assert.Equal(t, 2, r.AddUpdates("2024-02-01", "m - added f", "m.A - removed g"))
	assert.Equal(t, 0, r.AddUpdates("2024-02-01", "m - added f"))
	assert.Equal(t, 1, r.AddUpdates("2024-02-01", "m.B - changed h"))
	assert.Equal(t, []string{"m - added f", "m.A - removed g", "m.B - changed h"}, r.Updates["2024-02-01"])

	// A later diff of the same group replaces its line in place.
	assert.Equal(t, 1, r.AddUpdates("2024-02-01", "m - added f, k", "m.A - removed g"))
	assert.Equal(t, []string{"m - added f, k", "m.A - removed g", "m.B - changed h"}, r.Updates["2024-02-01"])

	// Other dates are untouched.
	assert.Equal(t, 1, r.AddUpdates("2024-02-02", "m - added f"))
	assert.Equal(t, []string{"m - added f, k", "m.A - removed g", "m.B - changed h"}, r.Updates["2024-02-01"])

	var zero Record
	assert.Equal(t, 1, zero.AddUpdates("2024-02-01", "x"))
	assert.Equal(t, 0, zero.AddUpdates("2024-02-01", "x"))
}

func TestDates(t *testing.T) {
	t.Parallel()

	r := &Record{Updates: map[string][]string{
		"2023-05-01": {"a"},
		"2024-01-01": {"b"},
		"2023-12-31": {"c"},
		"2022-01-01": nil,
	}}
	assert.Equal(t, []string{"2024-01-01", "2023-12-31", "2023-05-01"}, r.Dates())
}

func TestChangeLines(t *testing.T) {
	t.Parallel()

	lines := ChangeLines("pkg.mod", []string{"A.d", "e"}, []string{"c"}, []string{"A.b", "A.B.x"})
	assert.Equal(t, []string{
		"pkg.mod - added e; removed c",
		"pkg.mod.A - added d; changed b",
		"pkg.mod.A.B - changed x",
	}, lines)

	assert.Empty(t, ChangeLines("pkg", nil, nil, nil))
	assert.Equal(t, []string{"A - added f"}, ChangeLines("", []string{"A.f"}, nil, nil))
}

func TestModulePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel   string
		roots []string
		want  string
	}{
		{"src/pkg/mod.py", []string{"src"}, "pkg.mod"},
		{"src/pkg/__init__.py", []string{"src"}, "pkg"},
		{"pkg/mod.py", []string{"src"}, "pkg.mod"},
		{"lib/python/pkg/mod.py", []string{"lib", "lib/python"}, "pkg.mod"},
		{"./src/mod.py", []string{"src/"}, "mod"},
		{"src/__init__.py", []string{"src"}, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ModulePath(tt.rel, tt.roots))
		})
	}
}

func TestCheckDate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckDate("2024-12-09"))
	assert.Error(t, CheckDate("12/09/2024"))
	assert.Error(t, CheckDate("2024-13-01"))
	assert.NoError(t, CheckDate(Today()))
}

func TestApplyReplacesDocstring(t *testing.T) {
	t.Parallel()

	src := "#!/usr/bin/env python\n\"\"\"\nAuthor: a\nUpdates:\n\"\"\"\nimport os\n"
	rec, err := FromSource(context.Background(), []byte(src), Record{})
	require.NoError(t, err)
	rec.AddUpdates("2024-02-01", "m - added f")

	out, err := Apply(context.Background(), []byte(src), rec)
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/env python\n\"\"\"\nAuthor:         a\nEmail:\nDate:\nDescription:\n\nUpdates:\n    2024-02-01 - m - added f\n\"\"\"\nimport os\n", string(out))

	// Applying the same record again is stable.
	again, err := Apply(context.Background(), out, rec)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestApplyInsertsDocstring(t *testing.T) {
	t.Parallel()

	src := "# -*- coding: utf-8 -*-\nimport os\n"
	rec, err := FromSource(context.Background(), []byte(src), *New("a", "", "2024-01-01"))
	require.NoError(t, err)

	out, err := Apply(context.Background(), []byte(src), rec)
	require.NoError(t, err)
	assert.Equal(t, "# -*- coding: utf-8 -*-\n'''\nAuthor:         a\nEmail:\nDate:           2024-01-01\nDescription:\n\nUpdates:\n'''\nimport os\n", string(out))
}

func TestFromSourceUnstructured(t *testing.T) {
	t.Parallel()

	rec, err := FromSource(context.Background(), []byte("'Helpers for x.'\n"), *New("a", "", "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "Helpers for x.", rec.Description)
	assert.Equal(t, "a", rec.Author)

	out, err := Apply(context.Background(), []byte("'Helpers for x.'\n"), rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), "'''\nAuthor:         a\n")
	assert.Contains(t, string(out), "Description:\n\nHelpers for x.\n\nUpdates:\n'''\n")
}

func TestApplyKeepsPrefixAndAvoidsEmbeddedQuotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		source string
		prefix string
	}{
		{"r'Helpers for x.'\n", "r'''\nAuthor:"},
		{"\"a ''' b\"\n", "\"\"\"\nAuthor:"},
		{"'a \"\"\" b'\n", "'''\nAuthor:"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			src := []byte(tt.source)
			rec, err := FromSource(ctx, src, *New("a", "", "2024-01-01"))
			require.NoError(t, err)
			out, err := Apply(ctx, src, rec)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(out), tt.prefix), string(out))

			// The rewritten module still parses and carries the same record.
			again, err := FromSource(ctx, out, Record{})
			require.NoError(t, err)
			assert.Equal(t, rec.Description, again.Description)
		})
	}
}

func TestTripleQuote(t *testing.T) {
	t.Parallel()

	q, err := tripleQuote("'", "x ''' y")
	require.NoError(t, err)
	assert.Equal(t, `"""`, q)

	q, err = tripleQuote(`"""`, "plain")
	require.NoError(t, err)
	assert.Equal(t, `"""`, q)

	_, err = tripleQuote("'''", `''' and """`)
	assert.Error(t, err)
}
