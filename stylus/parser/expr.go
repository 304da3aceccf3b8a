package parser

import (
	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

// parseExpression parses a full expression, including its list form: a
// top-level comma-separated sequence is an Expression with IsList == true,
// while a space-separated sequence of primaries is IsList == false (spec §3
// "Expression").
func (p *parser) parseExpression() ast.Value {
	p.push(stateExpression)
	defer p.pop()

	first := p.parseCommaItem()
	if p.tok != token.COMMA {
		return first
	}

	list := &ast.Expression{ExprPos: first.Pos(), IsList: true}
	list.Append(first)
	for p.accept(token.COMMA) {
		list.Append(p.parseCommaItem())
	}
	return list
}

// parseCommaItem parses one element of a comma-separated list: itself a
// possibly space-separated run of primaries (e.g. "1px solid black").
func (p *parser) parseCommaItem() ast.Value {
	first := p.parseNegation()
	if !p.startsPrimary() {
		return first
	}
	seq := &ast.Expression{ExprPos: first.Pos(), IsList: false}
	seq.Append(first)
	for p.startsPrimary() {
		seq.Append(p.parseNegation())
	}
	return seq
}

// parseNegation implements the keyword form of negation ("not"), which
// binds looser than ternary and logical operators (spec §4.2 grammar:
// "negation (not) → ternary → logical"), unlike the symbolic "!" which
// binds as tightly as any other unary operator.
func (p *parser) parseNegation() ast.Value {
	if p.tok == token.NOT_KW {
		pos := p.pos
		p.next()
		return &ast.UnaryOp{OpPos: pos, Op: token.NOT_KW, Expr: p.parseNegation()}
	}
	return p.parseTernary()
}

// startsPrimary reports whether the current token can begin another
// primary in a space-separated run, used to decide when such a run ends.
func (p *parser) startsPrimary() bool {
	switch p.tok {
	case token.IDENT, token.FUNCTION, token.STRING, token.INT, token.FLOAT,
		token.UNIT, token.COLOR, token.TRUE, token.FALSE, token.NULL,
		token.LPAREN, token.SUB, token.ADD, token.NOT, token.NOT_KW, token.TILDE:
		return true
	}
	return false
}

// parseTernary parses "cond ? then : else", falling through to the binary
// operator grammar when no "?" follows.
func (p *parser) parseTernary() ast.Value {
	cond := p.parseBinary(1)
	if !p.accept(token.QUESTION) {
		return cond
	}
	then := p.parseTernary()
	p.expect(token.COLON)
	els := p.parseTernary()
	return &ast.Ternary{TernPos: cond.Pos(), Cond: cond, True: then, False: els}
}

// parseBinary implements precedence climbing using token.Precedence (spec
// §4.2's operator grammar, lowest: logical; highest: unary/defined).
func (p *parser) parseBinary(minPrec int) ast.Value {
	x := p.parseUnary()
	for {
		prec := p.tok.Precedence()
		if prec == 0 || prec < minPrec {
			return x
		}
		op, pos := p.tok, p.pos
		p.next()
		y := p.parseBinary(prec + 1)
		bin := &ast.BinOp{OpPos: pos, Op: op, Left: x, Right: y}
		if op == token.QUO && p.parenDepth == 0 && p.in(stateProperty) {
			bin.Ambiguous = true
		}
		x = bin
	}
}

func (p *parser) parseUnary() ast.Value {
	switch p.tok {
	case token.SUB, token.ADD, token.NOT, token.TILDE:
		op, pos := p.tok, p.pos
		p.next()
		return &ast.UnaryOp{OpPos: pos, Op: op, Expr: p.parseUnary()}
	}
	x := p.parsePostfix()
	if p.tok == token.IS_DEFINED {
		pos := p.pos
		p.next()
		return &ast.UnaryOp{OpPos: pos, Op: token.IS_DEFINED, Expr: x}
	}
	return x
}

// parsePostfix parses a primary. Range operators ("1..10", used by @for)
// are left to parseBinary, which binds them at their token.Precedence level
// (looser than additive, tighter than relational).
func (p *parser) parsePostfix() ast.Value {
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Value {
	pos := p.pos
	switch p.tok {
	case token.STRING:
		lit := p.lit
		p.next()
		quote := byte('"')
		if len(lit) > 0 {
			quote = lit[0]
		}
		var text string
		if len(lit) >= 2 {
			text = lit[1 : len(lit)-1]
		}
		return &ast.String{StrPos: pos, Value: text, Quote: quote}
	case token.INT, token.FLOAT:
		lit := p.lit
		p.next()
		u, err := ast.NewUnit(pos, lit, "")
		if err != nil {
			p.errorf(pos, "invalid number %q: %s", lit, err)
			return &ast.Null{NullPos: pos}
		}
		return u
	case token.UNIT:
		lit := p.lit
		p.next()
		value, suffix := splitUnit(lit)
		u, err := ast.NewUnit(pos, value, suffix)
		if err != nil {
			p.errorf(pos, "invalid number %q: %s", lit, err)
			return &ast.Null{NullPos: pos}
		}
		return u
	case token.COLOR:
		lit := p.lit
		p.next()
		c, err := parseColorLiteral(pos, lit)
		if err != nil {
			p.errorf(pos, "%s", err)
			return &ast.Null{NullPos: pos}
		}
		return c
	case token.TRUE:
		p.next()
		return &ast.Boolean{BoolPos: pos, Value: true}
	case token.FALSE:
		p.next()
		return &ast.Boolean{BoolPos: pos, Value: false}
	case token.NULL:
		p.next()
		return &ast.Null{NullPos: pos}
	case token.LPAREN:
		p.next()
		p.parenDepth++
		x := p.parseExpression()
		p.parenDepth--
		p.expect(token.RPAREN)
		return x
	case token.FUNCTION:
		return p.parseCall()
	case token.IDENT:
		return p.parseIdentOrAssignment()
	}
	p.errorf(pos, "unexpected token %s in expression", p.tok)
	lit := p.lit
	p.next()
	return &ast.Literal{LitPos: pos, Text: lit}
}

// parseIdentOrAssignment parses a bare identifier, desugaring it into an
// assignment Ident when followed by an assignment operator (spec §4.2
// "Assignment operators").
func (p *parser) parseIdentOrAssignment() ast.Value {
	pos := p.pos
	name := p.lit
	p.next()

	switch p.tok {
	case token.ASSIGN:
		p.next()
		rhs := p.parseExpression()
		return &ast.Ident{NamePos: pos, Name: name, Val: rhs}
	case token.COND_ASGN:
		p.next()
		rhs := p.parseExpression()
		lookup := &ast.Ident{NamePos: pos, Name: name}
		isDefined := &ast.UnaryOp{OpPos: pos, Op: token.IS_DEFINED, Expr: &ast.Ident{NamePos: pos, Name: name}}
		tern := &ast.Ternary{TernPos: pos, Cond: isDefined, True: lookup, False: rhs}
		return &ast.Ident{NamePos: pos, Name: name, Val: tern}
	case token.ADD_ASGN, token.SUB_ASGN, token.MUL_ASGN, token.QUO_ASGN, token.REM_ASGN:
		op := desugarAssignOp(p.tok)
		p.next()
		rhs := p.parseExpression()
		lookup := &ast.Ident{NamePos: pos, Name: name}
		bin := &ast.BinOp{OpPos: pos, Op: op, Left: lookup, Right: rhs}
		return &ast.Ident{NamePos: pos, Name: name, Val: bin}
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

func desugarAssignOp(tok token.Token) token.Token {
	switch tok {
	case token.ADD_ASGN:
		return token.ADD
	case token.SUB_ASGN:
		return token.SUB
	case token.MUL_ASGN:
		return token.MUL
	case token.QUO_ASGN:
		return token.QUO
	case token.REM_ASGN:
		return token.REM
	}
	return token.ILLEGAL
}

// parseCall parses a function/mixin call: "name(args)". Named per the
// FUNCTION token the scanner produces for an identifier immediately
// followed by '(' (spec §4.1).
func (p *parser) parseCall() ast.Value {
	pos := p.pos
	name := p.lit
	p.next() // consume FUNCTION
	p.expect(token.LPAREN)

	p.push(stateFunctionArgs)
	args := &ast.Expression{ExprPos: pos, IsList: true}
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args.Append(p.parseCommaItem())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.pop()
	p.expect(token.RPAREN)

	return &ast.Call{CallPos: pos, Name: name, Args: args}
}

// splitUnit separates a scanner UNIT literal ("<number>\x00<suffix>") back
// into its number text and unit suffix.
func splitUnit(lit string) (value, suffix string) {
	for i := 0; i < len(lit); i++ {
		if lit[i] == 0 {
			return lit[:i], lit[i+1:]
		}
	}
	return lit, ""
}
