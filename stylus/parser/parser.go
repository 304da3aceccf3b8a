// Package parser implements a recursive-descent parser for stylus source
// (spec §4.2): one-token accept/expect plus bounded lookahead, driven by a
// small explicit parser-state stack that disambiguates context-sensitive
// productions (selector vs. property, function definition vs. call, ...).
package parser

import (
	"fmt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/scanner"
	"github.com/matthewmueller/stylus/stylus/token"
)

// pstate names one entry in the parser's context stack (spec §4.2).
type pstate int

const (
	stateRoot pstate = iota
	stateSelector
	stateConditional
	stateFunction
	stateFunctionArgs
	stateFunctionParams
	stateKeyframe
	stateMedia
	stateFor
	statePage
	stateProperty
	stateExpression
	stateAssignment
	stateInterpolation
)

type parser struct {
	file    *token.File
	scanner scanner.Scanner
	errs    errors.List

	pos token.Pos
	tok token.Token
	lit string

	// buf holds tokens scanned ahead of the current one to support peek(n)
	// (spec §4.2: "one-token accept/expect plus N-token lookahead").
	buf []tokInfo

	state []pstate

	// parenDepth counts syntactic '(' ')' nesting during expression
	// parsing, independent of the scanner's own paren tracking, so the
	// parser can tell whether a '/' sits inside parentheses (spec §9 Open
	// Question: division-in-property ambiguity).
	parenDepth int
}

func (p *parser) push(s pstate) { p.state = append(p.state, s) }
func (p *parser) pop()          { p.state = p.state[:len(p.state)-1] }
func (p *parser) in(s pstate) bool {
	for i := len(p.state) - 1; i >= 0; i-- {
		if p.state[i] == s {
			return true
		}
	}
	return false
}
func (p *parser) top() pstate {
	if len(p.state) == 0 {
		return stateRoot
	}
	return p.state[len(p.state)-1]
}

func (p *parser) init(filename string, src []byte) {
	p.file = token.NewFile(filename, len(src))
	eh := func(pos token.Pos, msg string) {
		p.errs = append(p.errs, errors.NewLexError(pos, filename, msg))
	}
	p.scanner.Init(p.file, src, eh)
	p.state = []pstate{stateRoot}
	p.next()
}

// tokInfo is one scanned token, buffered to support peek(n).
type tokInfo struct {
	pos token.Pos
	tok token.Token
	lit string
}

// next advances to the next token, either from the lookahead buffer or
// straight from the scanner.
func (p *parser) next() {
	if len(p.buf) > 0 {
		t := p.buf[0]
		p.buf = p.buf[1:]
		p.pos, p.tok, p.lit = t.pos, t.tok, t.lit
		return
	}
	p.pos, p.tok, p.lit = p.scanner.Scan()
}

// peek returns the token n positions ahead of the current one without
// consuming it: peek(1) is the token that the next call to next() would
// make current.
func (p *parser) peek(n int) tokInfo {
	for len(p.buf) < n {
		pos, tok, lit := p.scanner.Scan()
		p.buf = append(p.buf, tokInfo{pos, tok, lit})
	}
	return p.buf[n-1]
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errs = append(p.errs, errors.NewParseError(pos, p.file.Name(), msg, ""))
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.error(pos, fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches tok, recording a parse
// error and leaving the cursor in place otherwise (so callers can attempt
// to resynchronize rather than cascading failures).
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errs = append(p.errs, errors.NewParseError(p.pos, p.file.Name(), tok.String(), p.tok.String()))
	} else {
		p.next()
	}
	return pos
}

func (p *parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// skipNewlines consumes any run of blank NEWLINE tokens, which carry no
// meaning of their own once a statement boundary has already been found
// (spec §4.2: "the parser skips blank newlines").
func (p *parser) skipNewlines() {
	for p.tok == token.NEWLINE {
		p.next()
	}
}

// ParseFile parses a complete stylus source file into a Root node. Parse
// errors are accumulated and returned as an errors.List; the returned Root
// may still be usable (best-effort) when non-fatal errors occurred.
func ParseFile(filename string, src []byte) (*ast.Root, error) {
	var p parser
	p.init(filename, src)

	block := ast.NewBlock(p.pos, true)
	p.parseStmtList(block, false)

	if len(p.errs) > 0 {
		return &ast.Root{Block: block}, p.errs
	}
	return &ast.Root{Block: block}, nil
}

// parseStmtList parses statements into block until EOF (top-level) or, when
// nested is true, until the matching OUTDENT/RBRACE.
func (p *parser) parseStmtList(block *ast.Block, nested bool) {
	for {
		p.skipNewlines()
		if p.tok == token.EOF {
			return
		}
		if nested && (p.tok == token.OUTDENT || p.tok == token.RBRACE) {
			return
		}
		stmt := p.parseStmt()
		if stmt != nil {
			block.Append(stmt)
		}
		if p.tok != token.NEWLINE && p.tok != token.EOF &&
			p.tok != token.OUTDENT && p.tok != token.RBRACE && p.tok != token.SEMI {
			// statement didn't consume its own terminator; force progress
			// to avoid an infinite loop on unexpected input.
			p.errorf(p.pos, "unexpected token %s", p.tok)
			p.next()
		}
		p.accept(token.SEMI)
	}
}

// parseBlock parses either an indentation-delimited or brace-delimited
// block (spec §4.1 "brace-compatible"): the lexer already decided which
// raw delimiter appears; the parser just matches whichever opening token it
// sees.
func (p *parser) parseBlock(scoped bool) *ast.Block {
	pos := p.pos
	block := ast.NewBlock(pos, scoped)
	switch p.tok {
	case token.LBRACE:
		p.next()
		p.skipNewlines()
		p.parseStmtList(block, true)
		p.expect(token.RBRACE)
	case token.INDENT:
		p.next()
		p.parseStmtList(block, true)
		p.expect(token.OUTDENT)
	default:
		p.errorf(p.pos, "expected block, got %s", p.tok)
	}
	return block
}
