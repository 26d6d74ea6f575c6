package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/pysync/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "True", `"True"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "def f():", `"def f():"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/pkg/mod.py", "src/pkg/mod.py"},
		{"qualified name", "A.__init__", "A.__init__"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, encodeValue(tt.in))
		})
	}
}

func TestEncodeDiff(t *testing.T) {
	t.Parallel()

	r := model.NewDiffReport("old.py", "new.py", []string{"e", "A.d"}, []string{"c"}, []string{"A.b"})
	want := `old: old.py
new: new.py
changes[4]{name,kind}:
  A.b,changed
  A.d,added
  c,removed
  e,added`
	assert.Equal(t, want, EncodeDiff(r))
}

func TestEncodeDiffEmpty(t *testing.T) {
	t.Parallel()

	r := model.NewDiffReport("a.py", "a.py", nil, nil, nil)
	assert.Equal(t, "old: a.py\nnew: a.py\nchanges[0]{name,kind}:", EncodeDiff(r))
}

func TestEncodeGraph(t *testing.T) {
	t.Parallel()

	r := &model.GraphReport{
		File: "mod.py",
		Symbols: []model.GraphEntry{
			{Name: "A", Kind: model.Class},
			{Name: "A.b", Kind: model.Function},
		},
	}
	assert.Equal(t, "file: mod.py\nsymbols[2]{name,kind}:\n  A,class\n  A.b,function", EncodeGraph(r))

	r.Symbols[1].Source = "def b():\n    pass"
	assert.Equal(t,
		"file: mod.py\nsymbols[2]{name,kind,source}:\n  A,class,\"\"\n  A.b,function,\"def b():\\n    pass\"",
		EncodeGraph(r))
}

func TestEncodeChangelog(t *testing.T) {
	t.Parallel()

	r := &model.ChangelogReport{
		Date: "2024-12-10",
		Rev:  "HEAD",
		Files: []model.FileUpdate{
			{Path: "src/pkg/mod.py", Module: "pkg.mod", Lines: []string{"pkg.mod - added e; removed c"}},
			{Path: "src/pkg/bad.py", Error: "syntax error at 1:4"},
		},
	}
	want := `date: 2024-12-10
rev: HEAD
updates[1]{path,module,line}:
  src/pkg/mod.py,pkg.mod,pkg.mod - added e; removed c
errors[1]{path,error}:
  src/pkg/bad.py,"syntax error at 1:4"`
	assert.Equal(t, want, EncodeChangelog(r))
}
