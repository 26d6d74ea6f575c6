package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// token is a leaf of the syntax tree with the types of its two nearest
// ancestors, which decide how it is spaced.
type token struct {
	text   string
	parent string
	grand  string
}

func (t token) in(parents ...string) bool {
	for _, p := range parents {
		if t.parent == p {
			return true
		}
	}
	return false
}

// render prints the given sibling nodes as one canonical line of code.
func (c *converter) render(nodes ...*sitter.Node) string {
	var toks []token
	for _, n := range nodes {
		if n == nil {
			continue
		}
		parent := ""
		if p := n.Parent(); p != nil {
			parent = p.Type()
		}
		c.collect(n, parent, "", &toks)
	}
	return joinTokens(toks)
}

func (c *converter) collect(n *sitter.Node, parent, grand string, out *[]token) {
	typ := n.Type()
	switch typ {
	case "comment", "line_continuation":
		return
	case "string":
		*out = append(*out, token{text: normalizeString(c.text(n)), parent: parent, grand: grand})
		return
	}
	if n.ChildCount() == 0 {
		if text := strings.TrimSpace(c.text(n)); text != "" {
			*out = append(*out, token{text: text, parent: parent, grand: grand})
		}
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.collect(n.Child(i), typ, parent, out)
	}
}

func joinTokens(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && spaced(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// spaced decides whether a space separates prev and next.
func spaced(prev, next token) bool {
	switch prev.text {
	case "(", "[", "{":
		return false
	case ".":
		return prev.parent == "import_prefix" && next.text == "import"
	case "@":
		if prev.parent == "decorator" {
			return false
		}
	case "-", "+", "~":
		if prev.parent == "unary_operator" {
			return false
		}
	case "*", "**":
		if prev.in("list_splat", "list_splat_pattern", "dictionary_splat", "dictionary_splat_pattern", "splat_pattern") {
			return false
		}
	case "=":
		if prev.in("keyword_argument", "default_parameter") {
			return false
		}
	case ":":
		if prev.parent == "slice" {
			return false
		}
	}

	switch next.text {
	case ")", "]", "}", ",", ":", ";":
		return false
	case ".":
		return next.parent == "import_prefix" && prev.parent != "import_prefix"
	case "(":
		if next.in("argument_list", "parameters") {
			return false
		}
		if next.parent == "generator_expression" && next.grand == "call" {
			return false
		}
	case "[":
		if next.in("subscript", "type_parameter", "type_parameters", "generic_type") {
			return false
		}
	case "=":
		if next.in("keyword_argument", "default_parameter") {
			return false
		}
	}
	return true
}

// normalizeString prints simple double-quoted literals with single quotes.
func normalizeString(raw string) string {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' || strings.HasPrefix(raw, `"""`) {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	if strings.ContainsAny(inner, `'"\`) {
		return raw
	}
	return "'" + inner + "'"
}

// QuoteString renders s as a single-quoted Python literal.
func QuoteString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`)
	return "'" + r.Replace(s) + "'"
}

// FormatStringList renders a list literal of string constants.
func FormatStringList(elems []string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = QuoteString(e)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
