package pyast

import "strings"

const indentUnit = "    "

// Unparse prints n back to Python source. Output has four-space
// indentation, one statement per line, a blank line before every function
// or class definition that is not the first line, and no trailing newline.
func Unparse(n *Node) string {
	var p printer
	p.node(n, 0)
	return p.b.String()
}

// FixLocations sets Line on n and every descendant to the line the node
// occupies in Unparse(n). Nodes spliced in from another tree carry stale
// lines until this runs.
func FixLocations(n *Node) {
	p := printer{fix: true}
	p.node(n, 0)
}

type printer struct {
	b    strings.Builder
	line int
	fix  bool
}

// fill starts a new line at the given depth and returns its line number.
func (p *printer) fill(depth int, text string) int {
	if p.b.Len() > 0 {
		p.b.WriteByte('\n')
		p.line++
	} else {
		p.line = 1
	}
	start := p.line
	for i := 0; i < depth; i++ {
		p.b.WriteString(indentUnit)
	}
	p.b.WriteString(text)
	p.line += strings.Count(text, "\n")
	return start
}

func (p *printer) maybeNewline() {
	if p.b.Len() > 0 {
		p.b.WriteByte('\n')
		p.line++
	}
}

func (p *printer) setLine(n *Node, line int) {
	if p.fix {
		n.Line = line
	}
}

func (p *printer) node(n *Node, depth int) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Module:
		p.setLine(n, 1)
		for _, s := range n.Body {
			p.node(s, depth)
		}
	case FunctionDef, ClassDef:
		p.maybeNewline()
		for _, d := range n.Decorators {
			p.fill(depth, d)
		}
		p.setLine(n, p.fill(depth, n.Header+":"))
		p.body(n.Body, depth+1)
	case Compound:
		for i, cl := range n.Clauses {
			l := p.fill(depth, cl.Header+":")
			if i == 0 {
				p.setLine(n, l)
			}
			p.body(cl.Body, depth+1)
		}
	default:
		p.setLine(n, p.fill(depth, n.Statement()))
	}
}

func (p *printer) body(stmts []*Node, depth int) {
	if len(stmts) == 0 {
		p.fill(depth, "pass")
		return
	}
	for _, s := range stmts {
		p.node(s, depth)
	}
}
