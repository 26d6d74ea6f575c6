// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// pysync reports.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/pysync/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodeDiff converts a DiffReport into TOON format.
func EncodeDiff(r *model.DiffReport) string {
	parts := []string{
		fmt.Sprintf("old: %s", encodeValue(r.Old)),
		fmt.Sprintf("new: %s", encodeValue(r.New)),
	}

	rows := make([][]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		rows = append(rows, []string{c.Name, string(c.Kind)})
	}
	parts = append(parts, formatTabular("changes", []string{"name", "kind"}, rows))
	return strings.Join(parts, "\n")
}

// EncodeGraph converts a GraphReport into TOON format. Function sources are
// included when present.
func EncodeGraph(r *model.GraphReport) string {
	withSource := false
	for _, e := range r.Symbols {
		if e.Source != "" {
			withSource = true
			break
		}
	}

	columns := []string{"name", "kind"}
	if withSource {
		columns = append(columns, "source")
	}
	rows := make([][]string, 0, len(r.Symbols))
	for _, e := range r.Symbols {
		row := []string{e.Name, string(e.Kind)}
		if withSource {
			row = append(row, e.Source)
		}
		rows = append(rows, row)
	}
	return strings.Join([]string{
		fmt.Sprintf("file: %s", encodeValue(r.File)),
		formatTabular("symbols", columns, rows),
	}, "\n")
}

// EncodeChangelog converts a ChangelogReport into TOON format, one row per
// update line.
func EncodeChangelog(r *model.ChangelogReport) string {
	parts := []string{
		fmt.Sprintf("date: %s", encodeValue(r.Date)),
		fmt.Sprintf("rev: %s", encodeValue(r.Rev)),
	}

	var rows [][]string
	var failed [][]string
	for _, f := range r.Files {
		if f.Error != "" {
			failed = append(failed, []string{f.Path, f.Error})
			continue
		}
		for _, line := range f.Lines {
			rows = append(rows, []string{f.Path, f.Module, line})
		}
	}
	parts = append(parts, formatTabular("updates", []string{"path", "module", "line"}, rows))
	if len(failed) > 0 {
		parts = append(parts, formatTabular("errors", []string{"path", "error"}, failed))
	}
	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

func quote(value string) string {
	return `"` + escaper.Replace(value) + `"`
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)
