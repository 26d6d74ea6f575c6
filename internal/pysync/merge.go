// Package pysync merges and diffs the symbols of two versions of a Python
// module.
package pysync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phobologic/pysync/internal/pyast"
	"github.com/phobologic/pysync/internal/symbols"
)

// ErrMissingContainer is returned when a new member's enclosing class or
// function does not exist on the left side of a merge.
var ErrMissingContainer = errors.New("missing container")

// MergeSource parses both sides and returns left with every definition and
// top-level assignment of right that left lacks.
func MergeSource(ctx context.Context, left, right []byte) (string, error) {
	l, err := pyast.Parse(ctx, left)
	if err != nil {
		return "", fmt.Errorf("left: %w", err)
	}
	r, err := pyast.Parse(ctx, right)
	if err != nil {
		return "", fmt.Errorf("right: %w", err)
	}
	return Merge(l, r)
}

// Merge appends to left every statement of right whose qualified name left
// does not define, then prints left. New top-level names go to the end of
// the module body and new members to the end of their container's body.
// Spliced statements are copies; right is never modified. left is only
// modified when Merge succeeds.
func Merge(left, right *pyast.Node) (string, error) {
	if left == nil || left.Kind != pyast.Module {
		return "", fmt.Errorf("left: %w", symbols.ErrUnsupportedNode)
	}
	if right == nil || right.Kind != pyast.Module {
		return "", fmt.Errorf("right: %w", symbols.ErrUnsupportedNode)
	}

	li := symbols.Visit(left)
	ri := symbols.Visit(right)

	var top, nested []symbols.Entry
	for _, e := range ri.Entries() {
		if li.Has(e.Name) {
			continue
		}
		if len(e.Name) == 1 {
			top = append(top, e)
			continue
		}
		// Members of a new definition travel with it.
		if !li.Has(e.Name.Parent()) && ri.Has(e.Name.Parent()) {
			continue
		}
		nested = append(nested, e)
	}

	containers := make([]*pyast.Node, len(nested))
	for i, e := range nested {
		parent := e.Name.Parent()
		c, ok := li.Lookup(parent)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingContainer, parent)
		}
		if !c.IsDef() {
			return "", fmt.Errorf("%w: %s is a %s", ErrMissingContainer, parent, c.Kind)
		}
		containers[i] = c
	}

	spliced := make(map[*pyast.Node]struct{})
	var exported []string
	seen := make(map[string]struct{})
	export := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			exported = append(exported, name)
		}
	}

	for _, e := range top {
		export(e.Name[0])
		if _, ok := spliced[e.Node]; ok {
			continue
		}
		spliced[e.Node] = struct{}{}
		left.Body = append(left.Body, e.Node.Clone())
		slog.Debug("merged definition", slog.String("name", e.Name.String()))
	}
	for i, e := range nested {
		export(e.Name[0])
		if _, ok := spliced[e.Node]; ok {
			continue
		}
		spliced[e.Node] = struct{}{}
		containers[i].Body = append(containers[i].Body, e.Node.Clone())
		slog.Debug("merged member", slog.String("name", e.Name.String()))
	}

	SyncExports(left, exported)
	pyast.FixLocations(left)
	return pyast.Unparse(left), nil
}
