package pyast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax is wrapped by every *SyntaxError.
var ErrSyntax = errors.New("invalid python syntax")

// SyntaxError locates the first ERROR or MISSING node of a parse.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// compoundTypes are block statements converted into Compound nodes.
var compoundTypes = map[string]struct{}{
	"if_statement":    {},
	"for_statement":   {},
	"while_statement": {},
	"try_statement":   {},
	"with_statement":  {},
	"match_statement": {},
	"case_clause":     {},
}

// clauseTypes are children of a compound statement that open a new branch.
var clauseTypes = map[string]struct{}{
	"elif_clause":         {},
	"else_clause":         {},
	"except_clause":       {},
	"except_group_clause": {},
	"finally_clause":      {},
}

// NewParser creates a tree-sitter parser for Python.
// Each goroutine must use its own parser (not thread-safe).
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return p
}

// Parse converts Python source into a Module node. Source with syntax errors
// yields a *SyntaxError.
func Parse(ctx context.Context, source []byte) (*Node, error) {
	root, closeTree, err := parseTree(ctx, source)
	if err != nil {
		return nil, err
	}
	defer closeTree()

	c := converter{src: source}
	return &Node{Kind: Module, Line: 1, Body: c.block(root)}, nil
}

// ParseString is Parse for string input.
func ParseString(ctx context.Context, source string) (*Node, error) {
	return Parse(ctx, []byte(source))
}

func parseTree(ctx context.Context, source []byte) (*sitter.Node, func(), error) {
	parser := NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing source: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		if se := firstSyntaxError(root, source); se != nil {
			return nil, nil, se
		}
		return nil, nil, &SyntaxError{Line: 1, Message: "unparseable source"}
	}
	return root, tree.Close, nil
}

func firstSyntaxError(node *sitter.Node, source []byte) *SyntaxError {
	if node.IsError() || node.IsMissing() {
		p := node.StartPoint()
		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		} else if text := strings.TrimSpace(nodeText(node, source)); text != "" {
			if len(text) > 40 {
				text = text[:40] + "..."
			}
			msg = fmt.Sprintf("unexpected %q", text)
		}
		return &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column), Message: msg}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if se := firstSyntaxError(node.Child(i), source); se != nil {
			return se
		}
	}
	return nil
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return nodeText(n, c.src)
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (c *converter) block(n *sitter.Node) []*Node {
	var out []*Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if stmt := c.statement(n.NamedChild(i)); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (c *converter) statement(n *sitter.Node) *Node {
	typ := n.Type()
	switch typ {
	case "comment":
		return nil
	case "function_definition", "class_definition":
		return c.definition(n, nil)
	case "decorated_definition":
		var decorators []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "decorator" {
				decorators = append(decorators, c.render(child))
			}
		}
		def := n.ChildByFieldName("definition")
		if def == nil {
			return c.simple(n)
		}
		return c.definition(def, decorators)
	case "expression_statement":
		if n.NamedChildCount() == 1 && n.NamedChild(0).Type() == "assignment" {
			return c.assignment(n, n.NamedChild(0))
		}
		return c.simple(n)
	}
	if _, ok := compoundTypes[typ]; ok {
		node := &Node{Kind: Compound, Line: line(n)}
		c.clauses(n, &node.Clauses)
		return node
	}
	return c.simple(n)
}

func (c *converter) simple(n *sitter.Node) *Node {
	return &Node{Kind: Simple, Line: line(n), Text: c.render(n)}
}

func (c *converter) definition(n *sitter.Node, decorators []string) *Node {
	node := &Node{
		Kind:       FunctionDef,
		Line:       line(n),
		Name:       c.text(n.ChildByFieldName("name")),
		Decorators: decorators,
	}
	if n.Type() == "class_definition" {
		node.Kind = ClassDef
	}

	var header []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "block":
			node.Body = c.block(child)
			continue
		case ":", "comment":
			continue
		case "argument_list":
			// class A(): prints as class A:
			if node.Kind == ClassDef && child.NamedChildCount() == 0 {
				continue
			}
		}
		header = append(header, child)
	}
	node.Header = c.render(header...)
	return node
}

func (c *converter) clauses(n *sitter.Node, out *[]*Clause) {
	var header []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		typ := child.Type()
		if _, ok := clauseTypes[typ]; ok {
			c.clauses(child, out)
			continue
		}
		switch typ {
		case "comment", ":":
		case "block":
			*out = append(*out, &Clause{Header: c.render(header...), Body: c.block(child)})
			header = nil
		default:
			header = append(header, child)
		}
	}
}

func (c *converter) assignment(stmt, a *sitter.Node) *Node {
	node := &Node{Kind: Assign, Line: line(stmt)}
	var targets []string
	for cur := a; cur != nil; {
		left := cur.ChildByFieldName("left")
		target := c.render(left)
		if typ := cur.ChildByFieldName("type"); typ != nil {
			node.Kind = AnnAssign
			target += ": " + c.render(typ)
		}
		targets = append(targets, target)
		node.Targets = append(node.Targets, targetNames(left, c.src)...)

		right := cur.ChildByFieldName("right")
		if right != nil && right.Type() == "assignment" {
			cur = right
			continue
		}
		if right != nil {
			node.Value = c.render(right)
			node.Elements, node.IsStringList = stringList(right, c.src)
		}
		cur = nil
	}
	node.Target = strings.Join(targets, " = ")
	return node
}

// targetNames returns the plain identifiers bound by an assignment target,
// descending into tuple and list unpacking.
func targetNames(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return []string{nodeText(n, src)}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list", "expression_list":
		var names []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			names = append(names, targetNames(n.NamedChild(i), src)...)
		}
		return names
	}
	return nil
}

// stringList decodes a list literal whose items are all plain string
// constants without prefixes or escapes.
func stringList(n *sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "list" {
		return nil, false
	}
	elems := []string{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "string" {
			return nil, false
		}
		s, ok := plainString(nodeText(child, src))
		if !ok {
			return nil, false
		}
		elems = append(elems, s)
	}
	return elems, true
}

func plainString(raw string) (string, bool) {
	if len(raw) < 2 || strings.HasPrefix(raw, `"""`) || strings.HasPrefix(raw, `'''`) {
		return "", false
	}
	q := raw[0]
	if (q != '\'' && q != '"') || raw[len(raw)-1] != q {
		return "", false
	}
	inner := raw[1 : len(raw)-1]
	if strings.ContainsAny(inner, `'"\`) {
		return "", false
	}
	return inner, true
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
