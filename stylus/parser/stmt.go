package parser

import (
	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

// parseStmt parses one statement (spec §4.2 "Statement dispatch") and
// applies the optional trailing "if"/"unless" postfix conditional that
// several statement forms allow.
func (p *parser) parseStmt() ast.Node {
	var stmt ast.Node
	switch p.tok {
	case token.IF, token.UNLESS:
		return p.parseIf()
	case token.FOR:
		return p.parseEach()
	case token.RETURN:
		stmt = p.parseReturn()
	case token.IMPORT:
		stmt = p.parseImport()
	case token.CHARSET:
		stmt = p.parseCharset()
	case token.MEDIA:
		stmt = p.parseMedia()
	case token.PAGE:
		stmt = p.parsePage()
	case token.KEYFRAMES:
		stmt = p.parseKeyframes()
	case token.FUNCTION:
		stmt = p.parseFunctionOrCall()
	default:
		stmt = p.parsePropertyOrSelector()
	}
	return p.maybePostfixCond(stmt)
}

// maybePostfixCond wraps stmt in an *ast.If when followed by a trailing
// "if"/"unless" (spec §4.2: "a postfix if/unless conditional may wrap the
// result").
func (p *parser) maybePostfixCond(stmt ast.Node) ast.Node {
	if p.tok != token.IF && p.tok != token.UNLESS {
		return stmt
	}
	negate := p.tok == token.UNLESS
	pos := p.pos
	p.next()
	p.push(stateConditional)
	cond := p.parseExpression()
	p.pop()

	block := ast.NewBlock(pos, false)
	block.Append(stmt)
	return &ast.If{IfPos: pos, Cond: cond, Block: block, Negate: negate}
}

// parsePropertyOrSelector disambiguates a bare identifier-led statement
// between a property declaration ("name: expr") and a selector group
// ("name { ... }" / "name\n  ...") by reading raw selector/property text up
// to the delimiter that decides it (spec §4.2 "Selector vs. property
// disambiguation").
func (p *parser) parsePropertyOrSelector() ast.Node {
	pos := p.pos

	if looksLikeAssignment(p) {
		return &ast.ExprStmt{X: p.parseExpression()}
	}

	segments, sawColon := p.parseHeaderText()

	switch {
	case sawColon:
		p.push(stateProperty)
		expr := p.parseExpression()
		p.pop()
		// Literal starts false: it marks a property the evaluator has already
		// reduced (spec §3 invariant, §8 idempotence), which a freshly parsed
		// property never is, interpolated name or not (spec §4.4 "Property
		// evaluation" runs for every non-literal property).
		return &ast.Property{PropPos: pos, Segments: segments, Expr: toExpression(expr)}
	default:
		return p.parseGroupBody(pos, segments)
	}
}

// looksLikeAssignment peeks one token ahead to tell "x = 10px" apart from a
// property/selector statement starting with the same leading identifier
// (spec §4.2 "Selector vs. property disambiguation").
func looksLikeAssignment(p *parser) bool {
	if p.tok != token.IDENT {
		return false
	}
	switch p.peek(1).tok {
	case token.ASSIGN, token.COND_ASGN, token.ADD_ASGN, token.SUB_ASGN,
		token.MUL_ASGN, token.QUO_ASGN, token.REM_ASGN:
		return true
	}
	return false
}

// parseHeaderText accumulates the selector-or-property header: either a
// sequence of literal fragments and {interpolations} up to ':' (property) or
// up to '{'/INDENT/',' (selector), per spec §4.1's "selector context"
// (block comments preserved, brace-mode layout suppressed). A '{' glued
// directly onto the preceding fragment with no intervening space is read as
// an interpolation ("$x" in ".x-{$x}"); a '{' following whitespace is the
// block opener and ends the header instead (spec §4.1 "Interpolation";
// §8 scenario 4).
func (p *parser) parseHeaderText() (segs []ast.Segment, sawColon bool) {
	p.push(stateSelector)
	p.scanner.SetAllowComments(true)
	defer func() {
		p.scanner.SetAllowComments(false)
		p.pop()
	}()

	lastEnd := -1 // byte offset just past the most recently appended segment
	for {
		switch p.tok {
		case token.COLON:
			// "color: red" (property) has a space after the colon; a
			// pseudo-class/pseudo-element like "a:hover" or "::before"
			// does not (spec §4.2 "Selector vs. property disambiguation").
			if isPropertyColon(p) {
				p.next()
				return segs, true
			}
			segs = append(segs, ast.Segment{SegPos: p.pos, Text: ":"})
			lastEnd = p.pos.Offset() + 1
			p.next()
		case token.LBRACE:
			if len(segs) == 0 || p.pos.Offset() != lastEnd {
				return segs, false
			}
			seg, end := p.parseHeaderInterpolation()
			segs = append(segs, seg)
			lastEnd = end
		case token.INDENT, token.NEWLINE, token.EOF, token.COMMA:
			return segs, false
		default:
			text := headerTokenText(p.tok, p.lit)
			segs = append(segs, ast.Segment{SegPos: p.pos, Text: text})
			lastEnd = p.pos.Offset() + len(text)
			p.next()
		}
	}
}

// parseHeaderInterpolation parses a "{expression}" interpolation glued onto
// a selector or property header (spec §4.1 "Interpolation"), returning the
// segment plus the byte offset just past its closing '}' so the caller can
// tell whether a further '{' is glued onto it in turn.
func (p *parser) parseHeaderInterpolation() (ast.Segment, int) {
	pos := p.pos
	p.next() // consume '{'
	p.push(stateInterpolation)
	expr := p.parseExpression()
	p.pop()
	rbrace := p.expect(token.RBRACE)
	return ast.Segment{SegPos: pos, Expr: expr}, rbrace.Offset() + 1
}

// headerTokenText renders a raw scanned token back into the literal text it
// contributes to a selector/property header, un-escaping the scanner's
// internal UNIT encoding ("<number>\x00<suffix>").
func headerTokenText(tok token.Token, lit string) string {
	if tok == token.UNIT {
		value, suffix := splitUnit(lit)
		return value + suffix
	}
	if lit != "" {
		return lit
	}
	return tok.String()
}

// isPropertyColon reports whether the ':' token currently under the cursor
// should be read as the name/value separator of a property declaration
// rather than as selector syntax (spec §4.2).
func isPropertyColon(p *parser) bool {
	switch p.scanner.PeekRune() {
	case ' ', '\t', '\n', -1:
		return true
	}
	return false
}

func toExpression(v ast.Value) *ast.Expression {
	if e, ok := v.(*ast.Expression); ok {
		return e
	}
	e := &ast.Expression{ExprPos: v.Pos()}
	e.Append(v)
	return e
}

// parseGroupBody parses the remaining comma-separated selectors (if any)
// sharing the header just read, plus the block they share (spec glossary
// "Group").
func (p *parser) parseGroupBody(pos token.Pos, first []ast.Segment) *ast.Group {
	g := &ast.Group{GroupPos: pos}
	g.Selectors = append(g.Selectors, &ast.Selector{SelPos: pos, Text: joinSegments(first), Segments: first, Parent: g})

	for p.accept(token.COMMA) {
		p.skipNewlines()
		segs, _ := p.parseHeaderText()
		g.Selectors = append(g.Selectors, &ast.Selector{SelPos: p.pos, Text: joinSegments(segs), Segments: segs, Parent: g})
	}

	g.Block = p.parseBlock(true)
	g.Block.Parent = g
	return g
}

// joinSegments renders a header's segments back into selector text for
// contexts that run before evaluation (error messages, pre-eval inspection);
// an unresolved interpolation segment renders as an empty placeholder since
// its value isn't known until evalGroup evaluates it.
func joinSegments(segs []ast.Segment) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}

// parseFunctionOrCall disambiguates a function/mixin definition from a bare
// call statement: "name(params)" followed by a block is a definition;
// otherwise it is a call (spec §4.2 "Function vs. call disambiguation"). The
// distinction requires looking past the matching ')' for an INDENT/'{', so
// this scans ahead through the lookahead buffer before committing to
// either grammar.
func (p *parser) parseFunctionOrCall() ast.Node {
	pos := p.pos
	name := p.lit

	if !p.functionIsDefinition() {
		return &ast.ExprStmt{X: p.parseCall()}
	}

	p.next() // consume FUNCTION
	p.expect(token.LPAREN)
	p.push(stateFunctionParams)
	params := p.parseParamList(pos)
	p.pop()
	p.expect(token.RPAREN)

	p.push(stateFunction)
	block := p.parseBlock(true)
	p.pop()
	return &ast.Function{FnPos: pos, Name: name, Params: params, Block: block}
}

// functionIsDefinition peeks past the balanced parentheses following the
// current FUNCTION token to see whether a block opener follows.
func (p *parser) functionIsDefinition() bool {
	depth := 0
	for i := 1; ; i++ {
		t := p.peek(i)
		switch t.tok {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				nxt := p.peek(i + 1)
				return nxt.tok == token.INDENT || nxt.tok == token.LBRACE
			}
		case token.EOF:
			return false
		}
	}
}

// parseParamList parses a function's parameter list: "name", "name = expr",
// or a rest parameter "name..." that receives the remaining arguments as a
// list (spec §4.4 "A rest-marked parameter receives the remaining arguments
// as a list").
func (p *parser) parseParamList(pos token.Pos) *ast.Params {
	params := &ast.Params{ParamsPos: pos}
	for p.tok != token.RPAREN && p.tok != token.EOF {
		prm := &ast.Param{}
		if p.tok == token.IDENT {
			prm.Name = p.lit
			p.next()
		}
		if p.tok == token.ELLIPSIS {
			prm.Rest = true
			p.next()
		} else if p.accept(token.ASSIGN) {
			prm.Default = p.parseTernary()
		}
		params.List = append(params.List, prm)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return params
}

func (p *parser) parseIf() *ast.If {
	pos := p.pos
	negate := p.tok == token.UNLESS
	p.next()

	p.push(stateConditional)
	cond := p.parseExpression()
	p.pop()

	block := p.parseBlock(false)
	node := &ast.If{IfPos: pos, Cond: cond, Block: block, Negate: negate}

	p.skipNewlines()
	for p.tok == token.ELSE {
		p.next()
		if p.tok == token.IF {
			p.next()
			p.push(stateConditional)
			econd := p.parseExpression()
			p.pop()
			eblock := p.parseBlock(false)
			node.Elses = append(node.Elses, &ast.If{IfPos: p.pos, Cond: econd, Block: eblock})
		} else {
			eblock := p.parseBlock(false)
			node.Elses = append(node.Elses, &ast.If{IfPos: p.pos, Block: eblock})
			break
		}
		p.skipNewlines()
	}
	return node
}

func (p *parser) parseEach() *ast.Each {
	pos := p.pos
	p.next() // consume "for"

	p.push(stateFor)
	val := p.expectIdentName()
	key := ""
	if p.accept(token.COMMA) {
		key = p.expectIdentName()
	}
	p.expect(token.IN)
	expr := p.parseExpression()
	p.pop()

	block := p.parseBlock(false)
	return &ast.Each{EachPos: pos, Val: val, Key: key, Expr: expr, Block: block}
}

func (p *parser) expectIdentName() string {
	if p.tok != token.IDENT {
		p.errorf(p.pos, "expected identifier, got %s", p.tok)
		return ""
	}
	name := p.lit
	p.next()
	return name
}

func (p *parser) parseReturn() *ast.Return {
	pos := p.pos
	p.next()
	if p.tok == token.NEWLINE || p.tok == token.EOF || p.tok == token.OUTDENT || p.tok == token.RBRACE {
		return &ast.Return{RetPos: pos}
	}
	return &ast.Return{RetPos: pos, Expr: p.parseExpression()}
}

func (p *parser) parseImport() *ast.Import {
	pos := p.pos
	p.next()
	path := p.expectPathLiteral()
	return &ast.Import{ImportPos: pos, Path: path}
}

func (p *parser) parseCharset() *ast.Charset {
	pos := p.pos
	p.next()
	return &ast.Charset{CharsetPos: pos, Value: p.expectPathLiteral()}
}

func (p *parser) expectPathLiteral() string {
	if p.tok != token.STRING {
		p.errorf(p.pos, "expected string literal, got %s", p.tok)
		return ""
	}
	lit := p.lit
	p.next()
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return lit
}

func (p *parser) parseMedia() *ast.Media {
	pos := p.pos
	p.next()
	p.push(stateMedia)
	segs, _ := p.parseHeaderText()
	p.pop()
	block := p.parseBlock(true)
	return &ast.Media{MediaPos: pos, Query: segs, Block: block}
}

func (p *parser) parsePage() *ast.Page {
	pos := p.pos
	p.next()
	p.push(statePage)
	segs, _ := p.parseHeaderText()
	p.pop()
	block := p.parseBlock(true)
	return &ast.Page{PagePos: pos, Selector: joinSegments(segs), Block: block}
}

func (p *parser) parseKeyframes() *ast.Keyframes {
	pos := p.pos
	p.next()
	p.push(stateKeyframe)
	name := ""
	if p.tok == token.IDENT {
		name = p.lit
		p.next()
	}
	kf := &ast.Keyframes{KeyframesPos: pos, Name: name}

	p.expect(token.INDENT)
	p.skipNewlines()
	for p.tok != token.OUTDENT && p.tok != token.EOF {
		segs, _ := p.parseHeaderText()
		fblock := p.parseBlock(true)
		kf.Frames = append(kf.Frames, &ast.Frame{Selector: joinSegments(segs), Block: fblock})
		p.skipNewlines()
	}
	p.expect(token.OUTDENT)
	p.pop()
	return kf
}
