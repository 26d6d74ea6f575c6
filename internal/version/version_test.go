package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Version
	}{
		{"1.2.3", Version{1, 2, 3, ""}},
		{"v0.5", Version{0, 5, 0, ""}},
		{"0.5.3a69", Version{0, 5, 3, "a69"}},
		{"0.0.25-alpha", Version{0, 0, 25, "-alpha"}},
		{"2.0.0rc1", Version{2, 0, 0, "rc1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "abc", "1.-2.3", "1.2.3.4", "01.2.3", "1.2."} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion, bad)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	v, err := Parse("v1.2")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v.String())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	parse := func(s string) Version {
		v, err := Parse(s)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, 1, Compare(parse("1.0.0"), parse("1.0.0a1")))
	assert.Equal(t, 1, Compare(parse("1.0.0-beta"), parse("1.0.0-alpha")))
	assert.Equal(t, -1, Compare(parse("1.0.0"), parse("1.1.0")))
	assert.Equal(t, 0, Compare(parse("1.0"), parse("1.0.0")))
}

func TestBump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		part Part
		want string
	}{
		{"1.2.3", Major, "2.0.0"},
		{"1.2.3", Minor, "1.3.0"},
		{"1.2.3", Patch, "1.2.4"},
		{"1.2.3rc1", Patch, "1.2.4"},
		{"1.2.3rc1", Release, "1.2.3"},
		{"0.0.25-alpha", Release, "0.0.25"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in+"/"+string(tt.part), func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tt.in)
			require.NoError(t, err)
			got, err := Bump(v, tt.part)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := Bump(Version{1, 0, 0, ""}, Release)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	_, err = Bump(Version{1, 0, 0, ""}, Part("huge"))
	assert.Error(t, err)
}

func TestParsePart(t *testing.T) {
	t.Parallel()

	p, err := ParsePart("minor")
	require.NoError(t, err)
	assert.Equal(t, Minor, p)
	_, err = ParsePart("build")
	assert.Error(t, err)
}

func TestBumpFilePyproject(t *testing.T) {
	t.Parallel()

	content := `[build-system]
requires = ["setuptools"]

[tool.black]
version = "ignored"

[project]
name = "pkg"
version = "0.4.1"
`
	old, next, out, err := BumpFile([]byte(content), Minor)
	require.NoError(t, err)
	assert.Equal(t, "0.4.1", old.String())
	assert.Equal(t, "0.5.0", next.String())
	assert.Contains(t, string(out), "\nversion = \"0.5.0\"\n")
	assert.Contains(t, string(out), "version = \"ignored\"")
}

func TestBumpFilePython(t *testing.T) {
	t.Parallel()

	_, next, out, err := BumpFile([]byte("'''doc'''\n__version__ = '1.0.0b2'\n"), Release)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", next.String())
	assert.Equal(t, "'''doc'''\n__version__ = '1.0.0'\n", string(out))
}

func TestFindMissing(t *testing.T) {
	t.Parallel()

	_, err := Find([]byte("[project]\nname = \"pkg\"\n"))
	assert.ErrorIs(t, err, ErrNoVersion)

	_, err = Find([]byte("[project]\nversion = \"one\"\n"))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}
