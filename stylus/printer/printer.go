// Package printer implements the plain, non-compressing CSS printer (spec
// §6 "Library entry point: compile(source, options) -> css_string (via the
// Printer collaborator)"). It turns a reduced Block -- the Evaluator's
// output, already flattened of control flow and function calls -- into
// CSS text, joining nested rule groups with the descendant combinator the
// way real CSS requires (the evaluator leaves Groups nested; only the
// printer flattens them, since that's purely a textual concern).
package printer

import (
	"strings"

	"github.com/matthewmueller/stylus/stylus/ast"
)

// Options configures rendering. The zero value renders expanded,
// human-readable CSS with a two-space indent; compression is explicitly out of
// scope (spec §1 Non-goals).
type Options struct {
	Indent string // per-level indent string; defaults to two spaces
}

// Print renders block as a complete CSS stylesheet.
func Print(block *ast.Block, opts Options) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	p := &printer{opts: opts}
	p.block(block, nil)
	return p.buf.String()
}

type printer struct {
	buf  strings.Builder
	opts Options
}

// block renders every statement of b, given the already-joined selector
// prefixes active at this nesting depth (nil at the stylesheet root).
func (p *printer) block(b *ast.Block, prefixes []string) {
	var props []*ast.Property
	flushProps := func() {
		if len(props) == 0 {
			return
		}
		p.rule(prefixes, props)
		props = nil
	}

	for _, n := range b.Nodes {
		switch v := n.(type) {
		case *ast.Property:
			props = append(props, v)
		case *ast.Group:
			flushProps()
			p.group(v, prefixes)
		case *ast.Media:
			flushProps()
			p.media(v)
		case *ast.Page:
			flushProps()
			p.page(v)
		case *ast.Keyframes:
			flushProps()
			p.keyframes(v)
		case *ast.Charset:
			flushProps()
			p.buf.WriteString("@charset \"" + v.Value + "\";\n")
		case *ast.ExprStmt:
			// A bare reduced expression carries no CSS representation of
			// its own; it is only meaningful for its evaluation side
			// effects, already applied.
		}
	}
	flushProps()
}

// rule renders one flat CSS rule: the joined selector list, then its
// declarations.
func (p *printer) rule(selectors []string, props []*ast.Property) {
	if len(selectors) == 0 {
		selectors = []string{""}
	}
	p.buf.WriteString(strings.Join(selectors, ",\n"))
	p.buf.WriteString(" {\n")
	for _, prop := range props {
		name := segmentsText(prop.Segments)
		p.buf.WriteString(p.opts.Indent)
		p.buf.WriteString(name)
		p.buf.WriteString(": ")
		p.buf.WriteString(exprText(prop.Expr))
		p.buf.WriteString(";\n")
	}
	p.buf.WriteString("}\n")
}

// group joins g's own selectors against the active prefixes (descendant
// combinator, or literal substitution of "&" for the parent selector) and
// recurses into its block under the joined prefix; block() takes care of
// collecting direct properties into one rule and descending into any
// further-nested groups.
func (p *printer) group(g *ast.Group, prefixes []string) {
	own := make([]string, len(g.Selectors))
	for i, s := range g.Selectors {
		own[i] = s.Text
	}
	joined := joinSelectors(prefixes, own)
	p.block(g.Block, joined)
}

// joinSelectors computes the cartesian product of parents × children,
// substituting a literal "&" in a child selector with its parent instead of
// prefixing it (spec glossary "nested selector"); with no parents, children
// are used as-is.
func joinSelectors(parents, children []string) []string {
	if len(parents) == 0 {
		return append([]string{}, children...)
	}
	out := make([]string, 0, len(parents)*len(children))
	for _, parent := range parents {
		for _, child := range children {
			if strings.Contains(child, "&") {
				out = append(out, strings.ReplaceAll(child, "&", parent))
			} else {
				out = append(out, parent+" "+child)
			}
		}
	}
	return out
}

func (p *printer) media(m *ast.Media) {
	p.buf.WriteString("@media " + segmentsText(m.Query) + " {\n")
	inner := &printer{opts: p.opts}
	inner.block(m.Block, nil)
	p.buf.WriteString(indentLines(inner.buf.String(), p.opts.Indent))
	p.buf.WriteString("}\n")
}

func (p *printer) page(pg *ast.Page) {
	sel := pg.Selector
	if sel != "" {
		sel = " " + sel
	}
	p.buf.WriteString("@page" + sel + " {\n")
	inner := &printer{opts: p.opts}
	inner.block(pg.Block, nil)
	p.buf.WriteString(indentLines(inner.buf.String(), p.opts.Indent))
	p.buf.WriteString("}\n")
}

func (p *printer) keyframes(k *ast.Keyframes) {
	p.buf.WriteString("@keyframes " + k.Name + " {\n")
	for _, f := range k.Frames {
		p.buf.WriteString(p.opts.Indent)
		p.buf.WriteString(f.Selector)
		p.buf.WriteString(" {\n")
		for _, n := range f.Block.Nodes {
			prop, ok := n.(*ast.Property)
			if !ok {
				continue
			}
			p.buf.WriteString(p.opts.Indent + p.opts.Indent)
			p.buf.WriteString(segmentsText(prop.Segments))
			p.buf.WriteString(": ")
			p.buf.WriteString(exprText(prop.Expr))
			p.buf.WriteString(";\n")
		}
		p.buf.WriteString(p.opts.Indent)
		p.buf.WriteString("}\n")
	}
	p.buf.WriteString("}\n")
}

func segmentsText(segs []ast.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func exprText(expr *ast.Expression) string {
	if expr == nil {
		return ""
	}
	return expr.String()
}

// indentLines prefixes every non-empty line of s with indent, used to nest
// an @media/@page's own printed block inside its braces.
func indentLines(s string, indent string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = indent + line
	}
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
