package symbols

import (
	"strings"

	"github.com/phobologic/pysync/internal/pyast"
)

// QualifiedName locates a definition, e.g. ["A", "b"] for method b of
// class A.
type QualifiedName []string

func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}

// Parent returns q without its last segment.
func (q QualifiedName) Parent() QualifiedName {
	if len(q) == 0 {
		return nil
	}
	return q[:len(q)-1]
}

// Entry pairs a qualified name with its defining statement.
type Entry struct {
	Name QualifiedName
	Node *pyast.Node
}

// Index maps qualified names to statements in first-encounter order.
// Recording a name twice keeps its position and replaces the node.
type Index struct {
	entries []Entry
	pos     map[string]int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{pos: make(map[string]int)}
}

// Visit indexes every function and class in n by qualified name, plus
// assignment targets that are not nested in a definition.
func Visit(n *pyast.Node) *Index {
	ix := NewIndex()
	ix.Visit(n)
	return ix
}

// Visit adds the definitions found under n to ix. path is the qualified
// name n is nested in; assignments are only recorded when it is empty.
func (ix *Index) Visit(n *pyast.Node, path ...string) {
	stack := append([]string(nil), path...)
	ix.visit(n, &stack)
}

func (ix *Index) visit(n *pyast.Node, path *[]string) {
	if n == nil {
		return
	}
	switch n.Kind {
	case pyast.FunctionDef, pyast.ClassDef:
		*path = append(*path, n.Name)
		ix.record(*path, n)
		for _, child := range n.Children() {
			ix.visit(child, path)
		}
		*path = (*path)[:len(*path)-1]
	case pyast.Assign, pyast.AnnAssign:
		if len(*path) > 0 {
			return
		}
		for _, target := range n.Targets {
			ix.record([]string{target}, n)
		}
	default:
		for _, child := range n.Children() {
			ix.visit(child, path)
		}
	}
}

func (ix *Index) record(name []string, n *pyast.Node) {
	q := append(QualifiedName(nil), name...)
	key := q.String()
	if i, ok := ix.pos[key]; ok {
		ix.entries[i].Node = n
		return
	}
	ix.pos[key] = len(ix.entries)
	ix.entries = append(ix.entries, Entry{Name: q, Node: n})
}

// Lookup returns the statement recorded for name.
func (ix *Index) Lookup(name QualifiedName) (*pyast.Node, bool) {
	i, ok := ix.pos[name.String()]
	if !ok {
		return nil, false
	}
	return ix.entries[i].Node, true
}

// Has reports whether name is recorded.
func (ix *Index) Has(name QualifiedName) bool {
	_, ok := ix.pos[name.String()]
	return ok
}

// Entries returns the recorded entries in first-encounter order.
func (ix *Index) Entries() []Entry {
	return append([]Entry(nil), ix.entries...)
}

// Len returns the number of recorded names.
func (ix *Index) Len() int {
	return len(ix.entries)
}
