package eval

import (
	stderrors "errors"
	"strings"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/parser"
	"github.com/matthewmueller/stylus/stylus/scope"
	"github.com/matthewmueller/stylus/stylus/token"
)

var errImportUnresolvable = stderrors.New("no import resolver configured")

// evalExprStmt evaluates a bare expression statement. A Call must route
// through mixin-mode dispatch (evalCallStmt) so its side effects (a splice
// of statements into out) aren't silently discarded by generic value
// reduction; anything else is reduced and re-appended if it yields anything
// renderable (spec §4.4 "a bare call is always a mixin invocation unless it
// resolves to nothing, in which case it falls through to a literal call").
func (e *Evaluator) evalExprStmt(s *ast.ExprStmt, out *ast.Block) error {
	if call, ok := s.X.(*ast.Call); ok {
		return e.evalCallStmt(call, out)
	}
	v, err := e.evalValueReturn(s.X)
	if err != nil {
		return err
	}
	out.Append(&ast.ExprStmt{X: v})
	return nil
}

// bindFunction binds fn into the current frame's function namespace and
// records a warning if doing so shadows a built-in or redefines a name
// already bound in this same frame (spec §7 "Warnings").
func (e *Evaluator) bindFunction(fn *ast.Function) {
	frame := e.stack.CurrentFrame()
	if e.warn {
		if _, redefined := frame.Scope.LookupFunction(fn.Name); redefined {
			e.warnings = append(e.warnings, "redefinition of "+fn.Name)
		} else if e.builtinNames[fn.Name] {
			e.warnings = append(e.warnings, fn.Name+" shadows a built-in function")
		}
	}
	frame.Scope.AddFunction(fn)
}

// evalGroup evaluates a selector group: each selector's interpolation
// segments are reduced and spliced into its final text, then its block is
// evaluated into a fresh nested scope, producing a new Group in out (spec
// §4.4 "Group evaluation", §8 scenario 4).
func (e *Evaluator) evalGroup(g *ast.Group, out *ast.Block) error {
	resolved := &ast.Group{GroupPos: g.GroupPos, Selectors: make([]*ast.Selector, len(g.Selectors))}
	for i, sel := range g.Selectors {
		text := sel.Text
		if hasSegmentInterpolation(sel.Segments) {
			segs, err := e.evalSegments(sel.Segments)
			if err != nil {
				return err
			}
			text = joinSegmentText(segs)
		}
		resolved.Selectors[i] = &ast.Selector{SelPos: sel.SelPos, Text: text}
	}

	body := ast.NewBlock(g.Block.Pos(), true)
	frame := scope.NewFrame(g.Block)
	frame.Mixin = "group"
	e.stack.Push(frame)
	err := e.evalBlockInto(g.Block, body)
	e.stack.Pop()
	if err != nil {
		return err
	}

	resolved.Block = body
	for _, sel := range resolved.Selectors {
		sel.Parent = resolved
	}
	out.Append(resolved)
	return nil
}

// evalProperty evaluates a "name: expr" declaration. The name is built by
// visiting its interpolation segments and stringifying; if that name
// resolves to a user function, the property is reinterpreted as a call with
// the property's expression as its argument instead -- this is how
// mixin-style calls-as-statements via property syntax work (spec §4.4
// "Property evaluation"). Otherwise its expression is reduced under return
// mode and re-wrapped for the printer.
func (e *Evaluator) evalProperty(p *ast.Property, out *ast.Block) error {
	if p.Literal {
		out.Append(p)
		return nil
	}

	segs, err := e.evalSegments(p.Segments)
	if err != nil {
		return err
	}

	if fn, ok := e.resolveCallable(joinSegmentText(segs)); ok && !fn.IsNative() {
		return e.evalCallStmt(&ast.Call{CallPos: p.PropPos, Name: fn.Name, Args: p.Expr}, out)
	}

	var expr *ast.Expression
	if p.Expr != nil {
		v, err := e.evalValueReturn(p.Expr)
		if err != nil {
			return err
		}
		if ex, ok := v.(*ast.Expression); ok {
			expr = ex
		} else {
			expr = &ast.Expression{ExprPos: p.Expr.Pos(), Nodes: []ast.Value{v}}
		}
	}

	out.Append(&ast.Property{PropPos: p.PropPos, Segments: segs, Expr: expr, Literal: true})
	return nil
}

// joinSegmentText concatenates a Segment slice's already-stringified text,
// used to build the plain name evalProperty resolves a call against and the
// final text of an interpolated selector.
func joinSegmentText(segs []ast.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

// hasSegmentInterpolation reports whether any segment is an unevaluated
// {expression}, as opposed to a header with no interpolation at all whose
// already-joined Text can be reused without a trip through evalSegments.
func hasSegmentInterpolation(segs []ast.Segment) bool {
	for _, s := range segs {
		if s.Expr != nil {
			return true
		}
	}
	return false
}

// evalSegments reduces a Segment slice's {expression} interpolations,
// shared by Property names and Media queries (spec §4.4, Segment doc).
func (e *Evaluator) evalSegments(segs []ast.Segment) ([]ast.Segment, error) {
	out := make([]ast.Segment, len(segs))
	for i, s := range segs {
		if s.Expr == nil {
			out[i] = s
			continue
		}
		v, err := e.evalValueReturn(s.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Segment{SegPos: s.SegPos, Text: stringifyValue(v.First())}
	}
	return out, nil
}

// evalIf evaluates a conditional, splicing the chosen branch's statements
// directly into out -- no nested Group is produced, matching CSS's flat
// output (spec §4.4 "If evaluation: the winning branch's statements are
// spliced into the parent block").
func (e *Evaluator) evalIf(n *ast.If, out *ast.Block) error {
	branch, err := e.selectIfBranch(n)
	if err != nil {
		return err
	}
	if branch == nil {
		return nil
	}
	if !branch.Scoped {
		return e.evalBlockInto(branch, out)
	}
	frame := scope.NewFrame(branch)
	frame.Mixin = "if"
	e.stack.Push(frame)
	err = e.evalBlockInto(branch, out)
	e.stack.Pop()
	return err
}

// evalEach evaluates a @for loop, splicing every iteration's statements
// into out in order (spec §4.4 "Each evaluation").
func (e *Evaluator) evalEach(n *ast.Each, out *ast.Block) error {
	items, err := e.evalEachItems(n)
	if err != nil {
		return err
	}
	for i, item := range items {
		err := e.withEachFrame(n, item, i, func(b *ast.Block) error {
			return e.evalBlockInto(b, out)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// evalMedia reduces a @media query's interpolation segments and evaluates
// its block as a nested Group-like scope (spec §4.4, Media doc).
func (e *Evaluator) evalMedia(m *ast.Media, out *ast.Block) error {
	query, err := e.evalSegments(m.Query)
	if err != nil {
		return err
	}

	body := ast.NewBlock(m.Block.Pos(), true)
	frame := scope.NewFrame(m.Block)
	frame.Mixin = "media"
	e.stack.Push(frame)
	err = e.evalBlockInto(m.Block, body)
	e.stack.Pop()
	if err != nil {
		return err
	}

	out.Append(&ast.Media{MediaPos: m.MediaPos, Query: query, Block: body})
	return nil
}

// evalPage evaluates an @page rule's block under a nested scope; its
// selector is plain text and carries no interpolation (spec §9: Page and
// Frame selectors are flat strings, a deliberate simplification).
func (e *Evaluator) evalPage(p *ast.Page, out *ast.Block) error {
	body := ast.NewBlock(p.Block.Pos(), true)
	frame := scope.NewFrame(p.Block)
	frame.Mixin = "page"
	e.stack.Push(frame)
	err := e.evalBlockInto(p.Block, body)
	e.stack.Pop()
	if err != nil {
		return err
	}
	out.Append(&ast.Page{PagePos: p.PagePos, Selector: p.Selector, Block: body})
	return nil
}

// evalKeyframes evaluates each @keyframes frame's block under its own
// nested scope.
func (e *Evaluator) evalKeyframes(k *ast.Keyframes, out *ast.Block) error {
	frames := make([]*ast.Frame, len(k.Frames))
	for i, f := range k.Frames {
		body := ast.NewBlock(f.Block.Pos(), true)
		frame := scope.NewFrame(f.Block)
		frame.Mixin = "keyframes"
		e.stack.Push(frame)
		err := e.evalBlockInto(f.Block, body)
		e.stack.Pop()
		if err != nil {
			return err
		}
		frames[i] = &ast.Frame{Selector: f.Selector, Block: body}
	}
	out.Append(&ast.Keyframes{KeyframesPos: k.KeyframesPos, Name: k.Name, Frames: frames})
	return nil
}

// evalImportStmt dispatches a single @import statement.
func (e *Evaluator) evalImportStmt(n *ast.Import, out *ast.Block) error {
	return e.importFile(n.ImportPos, n.Path, out)
}

// importFile resolves path via the configured Resolver, parses its
// contents, and splices the resulting statements directly into out in
// place -- the sequential Append in evalBlockInto's own caller loop is what
// guarantees "statements preceding the import, then the imported
// statements, then statements following it" without any extra bookkeeping
// (spec §5 Ordering, §8 import-ordering invariant).
func (e *Evaluator) importFile(pos token.Pos, path string, out *ast.Block) error {
	if e.resolver == nil {
		return errors.NewImportError(pos, path, errImportUnresolvable)
	}
	resolved, src, err := e.resolver.Resolve(e.filename, path, e.paths)
	if err != nil {
		return errors.NewImportError(pos, path, err)
	}

	root, err := parser.ParseFile(resolved, src)
	if err != nil {
		return errors.NewImportError(pos, path, err)
	}

	prevFilename := e.filename
	e.filename = resolved
	err = e.evalBlockInto(root.Block, out)
	e.filename = prevFilename
	if err != nil {
		return errors.NewImportError(pos, path, err)
	}
	return nil
}
