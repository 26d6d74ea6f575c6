// Package symbols indexes the definitions of a parsed Python module.
//
// Two views are provided. FunctionGraph nests functions and classes into a
// Group tree, optionally serializing each function to text; it drives
// diffing. Visit maps qualified names to their defining statements,
// including top-level assignments; it drives merging.
package symbols

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/pysync/internal/pyast"
)

// ErrUnsupportedNode is returned when a graph is requested for a node that
// has no definition body.
var ErrUnsupportedNode = errors.New("unsupported node")

// Symbol is either a Leaf or a Group.
type Symbol interface {
	symbol()
}

// Leaf is a serialized function definition.
type Leaf string

// Group maps member names to nested symbols.
type Group map[string]Symbol

func (Leaf) symbol()  {}
func (Group) symbol() {}

// FunctionGraph builds the symbol graph of a module, function or class.
// Functions become Leafs holding their unparsed source when serialize is
// set, and nested Groups otherwise. Classes are always Groups. Statements
// other than definitions are ignored.
func FunctionGraph(n *pyast.Node, serialize bool) (Group, error) {
	if err := checkGraphRoot(n); err != nil {
		return nil, err
	}
	return extract(n.Body, serialize, "", nil), nil
}

func checkGraphRoot(n *pyast.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrUnsupportedNode)
	}
	switch n.Kind {
	case pyast.Module, pyast.FunctionDef, pyast.ClassDef:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedNode, n.Kind)
}

// Definition is one node of a function graph with the kind of statement
// that produced it. Source is set for serialized functions.
type Definition struct {
	Name   string
	Kind   pyast.Kind
	Source string
}

// Definitions builds the function graph of n and lists every node of it,
// classes and functions alike, sorted by dot-joined name. A definition
// shadowed by a later one of the same name is not listed.
func Definitions(n *pyast.Node, serialize bool) (Group, []Definition, error) {
	if err := checkGraphRoot(n); err != nil {
		return nil, nil, err
	}
	kinds := map[string]pyast.Kind{}
	g := extract(n.Body, serialize, "", kinds)

	var defs []Definition
	var walk func(g Group, prefix string)
	walk = func(g Group, prefix string) {
		for name, sym := range g {
			path := joinPath(prefix, name)
			d := Definition{Name: path, Kind: kinds[path]}
			switch s := sym.(type) {
			case Leaf:
				d.Source = string(s)
			case Group:
				walk(s, path)
			}
			defs = append(defs, d)
		}
	}
	walk(g, "")
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return g, defs, nil
}

// SourceGraph parses source and builds its module graph.
func SourceGraph(ctx context.Context, source []byte, serialize bool) (Group, error) {
	mod, err := pyast.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return FunctionGraph(mod, serialize)
}

// extract builds the Group for body. When kinds is non-nil it records the
// statement kind of every member under its dot-joined path.
func extract(body []*pyast.Node, serialize bool, prefix string, kinds map[string]pyast.Kind) Group {
	g := Group{}
	for _, stmt := range body {
		path := joinPath(prefix, stmt.Name)
		switch stmt.Kind {
		case pyast.FunctionDef:
			if serialize {
				g[stmt.Name] = Leaf(pyast.Unparse(stmt))
			} else {
				g[stmt.Name] = extract(stmt.Body, false, path, kinds)
			}
		case pyast.ClassDef:
			g[stmt.Name] = extract(stmt.Body, serialize, path, kinds)
		default:
			continue
		}
		if kinds != nil {
			kinds[path] = stmt.Kind
		}
	}
	return g
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Keys lists the dot-joined path of every leaf in g, sorted. An empty Group
// below the root is reported as a leaf path of its own.
func Keys(g Group) []string {
	var keys []string
	collectKeys(g, "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(g Group, prefix string, out *[]string) {
	for name, sym := range g {
		path := joinPath(prefix, name)
		if sub, ok := sym.(Group); ok && len(sub) > 0 {
			collectKeys(sub, path, out)
			continue
		}
		*out = append(*out, path)
	}
}

// Lookup returns the symbol at a dot-joined path.
func Lookup(g Group, key string) (Symbol, bool) {
	var cur Symbol = g
	for _, part := range strings.Split(key, ".") {
		group, ok := cur.(Group)
		if !ok {
			return nil, false
		}
		if cur, ok = group[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
