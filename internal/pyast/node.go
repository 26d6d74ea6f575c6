// Package pyast converts tree-sitter Python syntax trees into a small
// statement-level tree that can be indexed, spliced and printed back.
package pyast

// Kind tags the variant held by a Node.
type Kind uint8

const (
	Module Kind = iota + 1
	FunctionDef
	ClassDef
	Assign
	AnnAssign
	// Compound is any other block statement (if, for, while, try, with,
	// match, case). Its bodies live in Clauses.
	Compound
	// Simple is a single-line statement kept as normalized text.
	Simple
)

var kindNames = map[Kind]string{
	Module:      "module",
	FunctionDef: "function",
	ClassDef:    "class",
	Assign:      "assign",
	AnnAssign:   "annassign",
	Compound:    "compound",
	Simple:      "simple",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Clause is one header/body pair of a compound statement, e.g. the
// "elif x" branch of an if statement.
type Clause struct {
	Header string
	Body   []*Node
}

// Node is one statement (or the module itself). Only the fields relevant to
// Kind are populated.
type Node struct {
	Kind Kind
	Line int

	// FunctionDef, ClassDef
	Name       string
	Decorators []string
	Header     string

	// Module, FunctionDef, ClassDef
	Body []*Node

	// Compound
	Clauses []*Clause

	// Assign, AnnAssign. Target is the rendered left side including any
	// annotation and chained targets ("a = b", "x: int").
	Targets []string
	Target  string
	Value   string
	// Elements holds the decoded items when Value is a list literal made
	// only of plain string constants.
	Elements     []string
	IsStringList bool

	// Simple
	Text string
}

// IsDef reports whether n is a function or class definition.
func (n *Node) IsDef() bool {
	return n.Kind == FunctionDef || n.Kind == ClassDef
}

// Statement returns the single-line text of a leaf statement.
func (n *Node) Statement() string {
	switch n.Kind {
	case Assign, AnnAssign:
		if n.Value == "" {
			return n.Target
		}
		return n.Target + " = " + n.Value
	default:
		return n.Text
	}
}

// Children returns the nested statements of n in source order.
func (n *Node) Children() []*Node {
	switch n.Kind {
	case Module, FunctionDef, ClassDef:
		return n.Body
	case Compound:
		var out []*Node
		for _, c := range n.Clauses {
			out = append(out, c.Body...)
		}
		return out
	default:
		return nil
	}
}

// SetElements replaces the items of a string-list assignment and re-renders
// its value.
func (n *Node) SetElements(elems []string) {
	n.Elements = append([]string(nil), elems...)
	n.IsStringList = true
	n.Value = FormatStringList(n.Elements)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Decorators = append([]string(nil), n.Decorators...)
	c.Targets = append([]string(nil), n.Targets...)
	c.Elements = append([]string(nil), n.Elements...)
	c.Body = cloneAll(n.Body)
	if n.Clauses != nil {
		c.Clauses = make([]*Clause, len(n.Clauses))
		for i, cl := range n.Clauses {
			c.Clauses[i] = &Clause{Header: cl.Header, Body: cloneAll(cl.Body)}
		}
	}
	return &c
}

func cloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
