// Package moddoc reads and writes the structured module docstring that
// records a Python module's author, creation date and dated change log.
package moddoc

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUnstructured is returned by Parse when a docstring has none of the
// record headers.
var ErrUnstructured = errors.New("unstructured docstring")

const (
	labelWidth   = 16
	updateIndent = "    "
	dateLayout   = "2006-01-02"
)

var updateLine = regexp.MustCompile(`^\s+(\d{4}-\d{2}-\d{2}) - (.*)$`)

// Record is the parsed form of a module docstring.
type Record struct {
	Author      string
	Email       string
	Date        string
	Description string
	// Updates maps an ISO date to its change lines in insertion order.
	Updates map[string][]string
	// Trailer holds unindented text found after the updates block.
	Trailer string
}

// New returns an empty record created on date.
func New(author, email, date string) *Record {
	return &Record{Author: author, Email: email, Date: date, Updates: map[string][]string{}}
}

type section int

const (
	inHeader section = iota
	inDescription
	inUpdates
	inTrailer
)

// Parse reads a docstring body into a Record.
func Parse(text string) (*Record, error) {
	r := &Record{Updates: map[string][]string{}}
	var (
		state       = inHeader
		structured  bool
		description []string
		trailer     []string
		current     string
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if state == inTrailer {
			trailer = append(trailer, line)
			continue
		}
		if label, value, ok := header(line); ok {
			structured = true
			switch label {
			case "Author":
				r.Author = value
			case "Email":
				r.Email = value
			case "Date":
				r.Date = value
			case "Description":
				state = inDescription
				if value != "" {
					description = append(description, value)
				}
			case "Updates":
				state = inUpdates
			}
			continue
		}

		switch state {
		case inHeader:
			if strings.TrimSpace(line) != "" {
				description = append(description, line)
				state = inDescription
			}
		case inDescription:
			description = append(description, line)
		case inUpdates:
			if strings.TrimSpace(line) == "" {
				continue
			}
			if m := updateLine.FindStringSubmatch(line); m != nil {
				current = m[1]
				r.Updates[current] = append(r.Updates[current], strings.TrimSpace(m[2]))
				continue
			}
			if line[0] == ' ' || line[0] == '\t' {
				if current != "" {
					r.Updates[current] = append(r.Updates[current], strings.TrimSpace(line))
				}
				continue
			}
			state = inTrailer
			trailer = append(trailer, line)
		}
	}

	if !structured {
		return nil, ErrUnstructured
	}
	r.Description = strings.Trim(strings.Join(description, "\n"), "\n")
	r.Trailer = strings.Trim(strings.Join(trailer, "\n"), "\n")
	return r, nil
}

// header splits "Label:   value" for the known record labels.
func header(line string) (label, value string, ok bool) {
	label, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	switch label {
	case "Author", "Email", "Date", "Description", "Updates":
		return label, strings.TrimSpace(value), true
	}
	return "", "", false
}

// Format renders the record as a docstring body ending in a newline. Update
// dates are listed newest first.
func (r *Record) Format() string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(strings.TrimRight(fmt.Sprintf("%-*s%s", labelWidth, label+":", value), " "))
		b.WriteByte('\n')
	}
	field("Author", r.Author)
	field("Email", r.Email)
	field("Date", r.Date)
	b.WriteString("Description:\n\n")
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("Updates:\n")
	for _, date := range r.Dates() {
		cont := strings.Repeat(" ", len(updateIndent)+len(date)+len(" - "))
		for i, line := range r.Updates[date] {
			if i == 0 {
				fmt.Fprintf(&b, "%s%s - %s\n", updateIndent, date, line)
			} else {
				fmt.Fprintf(&b, "%s%s\n", cont, line)
			}
		}
	}
	if r.Trailer != "" {
		b.WriteByte('\n')
		b.WriteString(r.Trailer)
		b.WriteByte('\n')
	}
	return b.String()
}

// Dates returns the update dates newest first.
func (r *Record) Dates() []string {
	dates := make([]string, 0, len(r.Updates))
	for d, lines := range r.Updates {
		if len(lines) > 0 {
			dates = append(dates, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// AddUpdates records lines under date and returns how many it added or
// replaced. A line of the form "group - text" replaces the line of the same
// group already recorded for that date; exact repeats are skipped.
func (r *Record) AddUpdates(date string, lines ...string) int {
	if r.Updates == nil {
		r.Updates = map[string][]string{}
	}
	at := make(map[string]int, len(r.Updates[date]))
	for i, l := range r.Updates[date] {
		if _, ok := at[updateGroup(l)]; !ok {
			at[updateGroup(l)] = i
		}
	}
	n := 0
	for _, l := range lines {
		group := updateGroup(l)
		i, ok := at[group]
		switch {
		case !ok:
			at[group] = len(r.Updates[date])
			r.Updates[date] = append(r.Updates[date], l)
		case r.Updates[date][i] != l:
			r.Updates[date][i] = l
		default:
			continue
		}
		n++
	}
	return n
}

// updateGroup returns the text before the first " - " of an update line, or
// the whole line when it has no group.
func updateGroup(line string) string {
	group, _, ok := strings.Cut(line, " - ")
	if !ok {
		return line
	}
	return group
}
