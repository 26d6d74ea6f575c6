// Package version bumps the version string of a Python project.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// ErrInvalidVersion is returned for strings that are not MAJOR.MINOR[.PATCH]
	// with an optional suffix, and for bumps that would not move forward.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrNoVersion is returned when a file has no version assignment.
	ErrNoVersion = errors.New("no version found")
)

// Part names the component a bump increments.
type Part string

const (
	Major   Part = "major"
	Minor   Part = "minor"
	Patch   Part = "patch"
	Release Part = "release"
)

// Parts lists the valid bump parts.
var Parts = []Part{Major, Minor, Patch, Release}

// ParsePart validates a bump part name.
func ParsePart(s string) (Part, error) {
	for _, p := range Parts {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown part %q: want major, minor, patch or release", s)
}

// Version is a release number with an optional pre-release suffix such as
// "a1", "rc2" or "-alpha".
type Version struct {
	Major, Minor, Patch int
	Suffix              string
}

// Parse reads a version string. A leading "v" is accepted and dropped.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	end := strings.IndexFunc(raw, func(r rune) bool { return r != '.' && (r < '0' || r > '9') })
	core, suffix := raw, ""
	if end >= 0 {
		core, suffix = raw[:end], raw[end:]
	}
	if !semver.IsValid("v" + core) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	parts := strings.Split(strings.TrimPrefix(semver.Canonical("v"+core), "v"), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	var v Version
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		*dst = n
	}
	v.Suffix = suffix
	return v, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Suffix)
}

// semverString maps v onto semver syntax for ordering.
func (v Version) semverString() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}
	pre := strings.TrimLeft(v.Suffix, "-.")
	pre = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '.':
			return r
		}
		return '.'
	}, pre)
	return s + "-" + pre
}

// Compare orders two versions; a suffixed version sorts before its release.
func Compare(a, b Version) int {
	return semver.Compare(a.semverString(), b.semverString())
}

// Bump returns v with part incremented. Major and minor bumps reset the
// lower components; every bump drops the suffix.
func Bump(v Version, part Part) (Version, error) {
	next := Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	switch part {
	case Major:
		next = Version{Major: v.Major + 1}
	case Minor:
		next = Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		next.Patch++
	case Release:
		if v.Suffix == "" {
			return Version{}, fmt.Errorf("%w: %s is already a release", ErrInvalidVersion, v)
		}
	default:
		return Version{}, fmt.Errorf("unknown part %q", part)
	}
	if Compare(next, v) <= 0 {
		return Version{}, fmt.Errorf("%w: %s does not follow %s", ErrInvalidVersion, next, v)
	}
	return next, nil
}

var assignment = regexp.MustCompile(`^(\s*(?:__version__|version)\s*=\s*)(["'])([^"']*)(["'])`)

// Location is where a version string sits in a file.
type Location struct {
	Version Version
	// Start and End are byte offsets of the unquoted version text.
	Start, End int
}

// Find locates the project version in a pyproject.toml or Python file. In
// TOML only the [project] and [tool.poetry] tables are searched.
func Find(content []byte) (Location, error) {
	section := ""
	offset := 0
	for _, line := range strings.SplitAfter(string(content), "\n") {
		start := offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			section = strings.Trim(trimmed, "[] ")
			continue
		}
		if section != "" && section != "project" && section != "tool.poetry" {
			continue
		}
		m := assignment.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		text := line[m[6]:m[7]]
		v, err := Parse(text)
		if err != nil {
			return Location{}, err
		}
		return Location{Version: v, Start: start + m[6], End: start + m[7]}, nil
	}
	return Location{}, ErrNoVersion
}

// BumpFile bumps the version found in content and returns the old and new
// versions with the rewritten content.
func BumpFile(content []byte, part Part) (old, next Version, out []byte, err error) {
	loc, err := Find(content)
	if err != nil {
		return Version{}, Version{}, nil, err
	}
	next, err = Bump(loc.Version, part)
	if err != nil {
		return Version{}, Version{}, nil, err
	}
	out = make([]byte, 0, len(content)+4)
	out = append(out, content[:loc.Start]...)
	out = append(out, next.String()...)
	out = append(out, content[loc.End:]...)
	return loc.Version, next, out, nil
}
