package pysync

import (
	"context"
	"fmt"
	"sort"

	"github.com/phobologic/pysync/internal/pyast"
	"github.com/phobologic/pysync/internal/symbols"
)

// Result lists dot-joined qualified names, each slice sorted.
type Result struct {
	Added   []string `yaml:"added" json:"added"`
	Removed []string `yaml:"removed" json:"removed"`
	Changed []string `yaml:"changed" json:"changed"`
}

// Empty reports whether the two sides define the same symbols with the same
// bodies.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// DiffSource parses both versions and diffs their symbols.
func DiffSource(ctx context.Context, before, after []byte) (Result, error) {
	o, err := pyast.Parse(ctx, before)
	if err != nil {
		return Result{}, fmt.Errorf("old: %w", err)
	}
	n, err := pyast.Parse(ctx, after)
	if err != nil {
		return Result{}, fmt.Errorf("new: %w", err)
	}
	return Diff(o, n)
}

// Diff compares the serialized function graphs of before and after. A symbol is
// changed when both sides hold a function whose printed source differs;
// classes are never reported as changed themselves, only their members.
func Diff(before, after *pyast.Node) (Result, error) {
	og, err := symbols.FunctionGraph(before, true)
	if err != nil {
		return Result{}, fmt.Errorf("old: %w", err)
	}
	ng, err := symbols.FunctionGraph(after, true)
	if err != nil {
		return Result{}, fmt.Errorf("new: %w", err)
	}

	oldKeys := toSet(symbols.Keys(og))
	newKeys := toSet(symbols.Keys(ng))

	res := Result{
		Added:   []string{},
		Removed: []string{},
		Changed: []string{},
	}
	for k := range newKeys {
		if _, ok := oldKeys[k]; !ok {
			res.Added = append(res.Added, k)
		}
	}
	for k := range oldKeys {
		if _, ok := newKeys[k]; !ok {
			res.Removed = append(res.Removed, k)
			continue
		}
		ov, _ := symbols.Lookup(og, k)
		nv, _ := symbols.Lookup(ng, k)
		o, ok1 := ov.(symbols.Leaf)
		n, ok2 := nv.(symbols.Leaf)
		if !ok1 || !ok2 {
			continue
		}
		if o != n {
			res.Changed = append(res.Changed, k)
		}
	}
	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	sort.Strings(res.Changed)
	return res, nil
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
