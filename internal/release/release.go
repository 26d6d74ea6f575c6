// Package release writes version entries into a project's CHANGELOG.md.
package release

import (
	"fmt"
	"strings"

	"github.com/phobologic/pysync/internal/vcs"
)

// FileName is the changelog bump updates by default.
const FileName = "CHANGELOG.md"

const newHeader = "# Changelog\n\n"

// Entry is one released version.
type Entry struct {
	Version string
	Date    string
	Message string
	Changes []vcs.Change
}

var sections = []struct {
	title  string
	status vcs.Status
	letter string
}{
	{"ADDED", vcs.Added, "A"},
	{"CHANGED", vcs.Modified, "M"},
	{"REMOVED", vcs.Deleted, "D"},
}

// Render formats e as a markdown section. Files are listed under one
// heading per kind of change, in the order given.
func Render(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s\n", e.Version, e.Date)
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	for _, s := range sections {
		var lines []string
		for _, c := range e.Changes {
			if c.Status == s.status {
				lines = append(lines, fmt.Sprintf("- %s: `%s`", s.letter, c.Path))
			}
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString("### " + s.title + "\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	return b.String()
}

// Prepend inserts e before the first "##" heading of content, after any
// title and preamble. Content without a version heading gets the entry
// appended. Empty content starts a new changelog.
func Prepend(content string, e Entry) string {
	entry := Render(e)
	if strings.TrimSpace(content) == "" {
		return newHeader + entry
	}
	i := strings.Index(content, "##")
	if i < 0 {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + "\n" + entry
	}
	return content[:i] + entry + "\n" + content[i:]
}

// Relevant drops the changes to files the release itself rewrites.
func Relevant(changes []vcs.Change, skip ...string) []vcs.Change {
	out := make([]vcs.Change, 0, len(changes))
	for _, c := range changes {
		drop := false
		for _, s := range skip {
			if c.Path == s {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	return out
}
