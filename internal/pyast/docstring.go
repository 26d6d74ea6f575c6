package pyast

import (
	"context"
	"strings"
)

// Docstring is the module docstring literal as it appears in source.
type Docstring struct {
	// Start and End are the byte offsets of the whole literal.
	Start int
	End   int
	// Open includes any string prefix, e.g. r'''.
	Open  string
	Close string
	Body  string
}

// FindDocstring returns the module docstring of source, or nil when the
// first statement is not a string literal.
func FindDocstring(ctx context.Context, source []byte) (*Docstring, error) {
	root, closeTree, err := parseTree(ctx, source)
	if err != nil {
		return nil, err
	}
	defer closeTree()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return nil, nil
		}
		lit := stmt.NamedChild(0)
		if lit.Type() != "string" {
			return nil, nil
		}
		open, body, closing, ok := splitLiteral(nodeText(lit, source))
		if !ok {
			return nil, nil
		}
		return &Docstring{
			Start: int(lit.StartByte()),
			End:   int(lit.EndByte()),
			Open:  open,
			Close: closing,
			Body:  body,
		}, nil
	}
	return nil, nil
}

func splitLiteral(raw string) (open, body, closing string, ok bool) {
	i := strings.IndexAny(raw, `'"`)
	if i < 0 {
		return "", "", "", false
	}
	q := raw[i : i+1]
	if triple := strings.Repeat(q, 3); strings.HasPrefix(raw[i:], triple) && len(raw)-i >= 6 {
		q = triple
	}
	open = raw[:i+len(q)]
	if len(raw) < len(open)+len(q) || !strings.HasSuffix(raw, q) {
		return "", "", "", false
	}
	return open, raw[len(open) : len(raw)-len(q)], q, true
}
