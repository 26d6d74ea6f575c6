// Package model defines the report structures shared by pysync's renderers.
package model

import "sort"

// ChangeKind classifies a symbol difference between two module versions.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// SymbolKind indicates the syntactic kind of a graph entry.
type SymbolKind string

const (
	Class    SymbolKind = "class"
	Function SymbolKind = "function"
)

// Change is one qualified name that differs between two versions.
type Change struct {
	Name string     `yaml:"name" json:"name"`
	Kind ChangeKind `yaml:"kind" json:"kind"`
}

// DiffReport is the result of comparing two versions of a module.
type DiffReport struct {
	Old     string   `yaml:"old" json:"old"`
	New     string   `yaml:"new" json:"new"`
	Changes []Change `yaml:"changes" json:"changes"`
}

// NewDiffReport flattens the three name lists into changes sorted by name,
// then kind.
func NewDiffReport(oldPath, newPath string, added, removed, changed []string) *DiffReport {
	r := &DiffReport{Old: oldPath, New: newPath}
	for _, group := range []struct {
		kind  ChangeKind
		names []string
	}{{Added, added}, {Removed, removed}, {Changed, changed}} {
		for _, n := range group.names {
			r.Changes = append(r.Changes, Change{Name: n, Kind: group.kind})
		}
	}
	sort.SliceStable(r.Changes, func(i, j int) bool {
		if r.Changes[i].Name != r.Changes[j].Name {
			return r.Changes[i].Name < r.Changes[j].Name
		}
		return r.Changes[i].Kind < r.Changes[j].Kind
	})
	return r
}

// GraphEntry is one function or class in a module's symbol graph. Source is
// set for serialized functions.
type GraphEntry struct {
	Name   string     `yaml:"name" json:"name"`
	Kind   SymbolKind `yaml:"kind" json:"kind"`
	Source string     `yaml:"source,omitempty" json:"source,omitempty"`
}

// GraphReport lists a module's symbols in name order.
type GraphReport struct {
	File    string       `yaml:"file" json:"file"`
	Symbols []GraphEntry `yaml:"symbols" json:"symbols"`
}

// FileUpdate records what changelog did to one file.
type FileUpdate struct {
	Path   string   `yaml:"path" json:"path"`
	Module string   `yaml:"module" json:"module"`
	Lines  []string `yaml:"lines" json:"lines"`
	Error  string   `yaml:"error,omitempty" json:"error,omitempty"`
}

// ChangelogReport summarizes a changelog run.
type ChangelogReport struct {
	Date  string       `yaml:"date" json:"date"`
	Rev   string       `yaml:"rev" json:"rev"`
	Files []FileUpdate `yaml:"files" json:"files"`
}
