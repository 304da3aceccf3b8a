// Package scanner implements the stylus lexer (spec §4.1). It consumes
// source text and produces a token stream including synthetic layout
// tokens (INDENT, OUTDENT, NEWLINE). Lookahead is not done here: the parser
// buffers the tokens Scan returns.
package scanner

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/matthewmueller/stylus/stylus/token"
)

// ErrorHandler is invoked for every lexical error encountered. Lexing does
// not stop on its own; callers that want "fail fast" behavior (spec §4.1:
// "lexing halts") should have their handler record the error and have the
// parser observe the Scanner's ErrorCount.
type ErrorHandler func(pos token.Pos, msg string)

const bom = 0xFEFF

// pending is a synthetic token queued for a later Scan call, used for the
// layout tokens (INDENT/OUTDENT/NEWLINE) that don't correspond 1:1 with a
// single call to next().
type pending struct {
	pos token.Pos
	tok token.Token
	lit string
}

// Scanner holds the lexer's internal state while processing a given text.
// It must be initialized via Init before use.
type Scanner struct {
	file *token.File
	src  []byte
	err  ErrorHandler

	ch       rune
	offset   int
	rdOffset int

	indentStack []int
	indentChar  byte // 0 (unset), ' ', or '\t'

	braceDepth int
	parenDepth int

	allowComments bool // selector-context block comments are preserved

	queue []pending

	ErrorCount int
}

// Init prepares the scanner to tokenize src, using file for position
// bookkeeping. err, if non-nil, is invoked for each lexical error.
func (s *Scanner) Init(file *token.File, src []byte, err ErrorHandler) {
	s.file = file
	s.src = src
	s.err = err
	s.ch = ' '
	s.offset = 0
	s.rdOffset = 0
	s.indentStack = []int{0}
	s.indentChar = 0
	s.braceDepth = 0
	s.parenDepth = 0
	s.queue = nil
	s.ErrorCount = 0

	s.next()
	if s.ch == bom {
		s.next()
	}
}

// SetAllowComments toggles whether block comments are preserved as COMMENT
// tokens (used by the parser while inside a selector, spec §4.1).
func (s *Scanner) SetAllowComments(v bool) { s.allowComments = v }

// PeekRune returns the rune immediately following the token most recently
// returned by Scan, without consuming it. It is used by the parser's
// property-vs-selector disambiguation ("color: red" vs "a:hover", spec
// §4.2) to tell whether a ':' is immediately followed by whitespace.
func (s *Scanner) PeekRune() rune { return s.ch }

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		r, w := rune(s.src[s.rdOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal character NUL")
		case r >= utf8.RuneSelf:
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			} else if r == bom && s.offset > 0 {
				s.error(s.offset, "illegal byte order mark")
			}
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		s.ch = -1
	}
}

func (s *Scanner) peekByte() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) error(offs int, msg string) {
	if s.err != nil {
		s.err(s.file.Pos(offs), msg)
	}
	s.ErrorCount++
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' ||
		ch >= utf8.RuneSelf && unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9' || ch >= utf8.RuneSelf && unicode.IsDigit(ch)
}

func isIdentRune(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '-'
}

// normalizeIdent applies Unicode NFC normalization so that identifiers
// written with combining marks compare equal to their precomposed form
// (SPEC_FULL domain stack: golang.org/x/text/unicode/norm).
func normalizeIdent(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func (s *Scanner) scanIdentifier() string {
	offs := s.offset
	for isIdentRune(s.ch) {
		s.next()
	}
	return normalizeIdent(string(s.src[offs:s.offset]))
}

func (s *Scanner) scanMantissa() {
	for isDigit(s.ch) {
		s.next()
	}
}

func isUnitStart(ch rune) bool {
	return isLetter(ch) || ch == '%'
}

// scanNumber scans an integer or floating-point literal possibly followed
// directly by a CSS unit suffix ("px", "em", "%", "deg", ...), producing a
// single UNIT token per spec §3/§4.1.
func (s *Scanner) scanNumber() (token.Token, string) {
	offs := s.offset
	s.scanMantissa()
	if s.ch == '.' && isDigit(rune(s.peekByte())) {
		s.next()
		s.scanMantissa()
	} else if s.ch == '.' && s.peekByte() == '.' {
		// don't consume: this is a range/ellipsis operator, not a decimal point
	}
	if s.ch == 'e' || s.ch == 'E' {
		save, saveOff, saveRd := s.ch, s.offset, s.rdOffset
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		if isDigit(s.ch) {
			s.scanMantissa()
		} else {
			s.ch, s.offset, s.rdOffset = save, saveOff, saveRd
		}
	}
	numEnd := s.offset
	tok := token.INT
	if idx := indexByte(s.src[offs:numEnd], '.'); idx >= 0 {
		tok = token.FLOAT
	}
	if isUnitStart(s.ch) {
		unitOffs := s.offset
		if s.ch == '%' {
			s.next()
		} else {
			for isLetter(s.ch) {
				s.next()
			}
		}
		return token.UNIT, string(s.src[offs:unitOffs]) + "\x00" + string(s.src[unitOffs:s.offset])
	}
	return tok, string(s.src[offs:numEnd])
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func isHexDigit(ch rune) bool {
	return '0' <= ch && ch <= '9' || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

// scanColor scans a '#'-prefixed hex color of length 3, 4, 6, or 8.
func (s *Scanner) scanColor() (token.Token, string) {
	offs := s.offset - 1
	n := 0
	for isHexDigit(s.ch) {
		s.next()
		n++
	}
	if n != 3 && n != 4 && n != 6 && n != 8 {
		s.error(offs, "illegal hex color literal")
	}
	return token.COLOR, string(s.src[offs:s.offset])
}

func (s *Scanner) scanEscape(quote rune) {
	switch s.ch {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', quote:
		s.next()
	default:
		s.next()
	}
}

func (s *Scanner) scanString(quote rune) string {
	offs := s.offset - 1
	for {
		ch := s.ch
		if ch == '\n' || ch < 0 {
			s.error(offs, "string literal not terminated")
			break
		}
		s.next()
		if ch == quote {
			break
		}
		if ch == '\\' {
			s.scanEscape(quote)
		}
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.next()
	}
}

// scanBlockComment returns the raw "/* ... */" text; the caller decides
// whether to keep or discard it based on s.allowComments.
func (s *Scanner) scanBlockComment() string {
	offs := s.offset - 1
	s.next()
	for s.ch >= 0 {
		ch := s.ch
		s.next()
		if ch == '*' && s.ch == '/' {
			s.next()
			break
		}
	}
	if s.ch < 0 {
		s.error(offs, "comment not terminated")
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) skipHorizontalSpace() {
	for s.ch == ' ' || s.ch == '\t' {
		s.next()
	}
}

func (s *Scanner) enqueue(pos token.Pos, tok token.Token, lit string) {
	s.queue = append(s.queue, pending{pos, tok, lit})
}

// consumeLayout is called with s.ch == '\n' and braceDepth == parenDepth ==
// 0. It consumes blank lines, measures the indentation of the next
// non-blank line, and enqueues the appropriate INDENT/OUTDENT/NEWLINE
// tokens (spec §4.1 "Indentation").
func (s *Scanner) consumeLayout() {
	pos := s.file.Pos(s.offset)
	for {
		s.next() // consume '\n'
		col := 0
		mixed := false
		for s.ch == ' ' || s.ch == '\t' {
			ch := byte(s.ch)
			if s.indentChar == 0 {
				s.indentChar = ch
			} else if s.indentChar != ch {
				mixed = true
			}
			col++
			s.next()
		}
		if mixed {
			s.error(s.offset, "mixed tabs and spaces in indentation")
		}
		if s.ch == '\n' {
			continue // blank line, keep scanning
		}
		top := s.indentStack[len(s.indentStack)-1]
		switch {
		case s.ch < 0:
			for len(s.indentStack) > 1 {
				s.indentStack = s.indentStack[:len(s.indentStack)-1]
				s.enqueue(pos, token.OUTDENT, "")
			}
		case col > top:
			s.indentStack = append(s.indentStack, col)
			s.enqueue(pos, token.INDENT, "")
		case col < top:
			for len(s.indentStack) > 1 && s.indentStack[len(s.indentStack)-1] > col {
				s.indentStack = s.indentStack[:len(s.indentStack)-1]
				s.enqueue(pos, token.OUTDENT, "")
			}
			if s.indentStack[len(s.indentStack)-1] != col {
				// re-sync to the closest enclosing level rather than failing
				// the whole lex; a stray outdent is still reported upstream
				// via the parser's structural checks.
				s.indentStack = append(s.indentStack, col)
			}
		default:
			s.enqueue(pos, token.NEWLINE, "\n")
		}
		return
	}
}

func (s *Scanner) switch2(tok0, tok1 token.Token) token.Token {
	if s.ch == '=' {
		s.next()
		return tok1
	}
	return tok0
}

// Scan scans the next token and returns its position, kind, and literal
// text (spec §4.1). For a UNIT token, lit is "<number>\x00<suffix>"; callers
// should split on the NUL byte.
func (s *Scanner) Scan() (pos token.Pos, tok token.Token, lit string) {
	if len(s.queue) > 0 {
		p := s.queue[0]
		s.queue = s.queue[1:]
		return p.pos, p.tok, p.lit
	}

scanAgain:
	s.skipHorizontalSpace()

	if s.ch == '\n' {
		if s.braceDepth == 0 && s.parenDepth == 0 {
			s.consumeLayout()
			if len(s.queue) > 0 {
				p := s.queue[0]
				s.queue = s.queue[1:]
				return p.pos, p.tok, p.lit
			}
			goto scanAgain
		}
		// inside parens/braces a newline is insignificant whitespace
		s.next()
		goto scanAgain
	}

	offset := s.offset
	pos = s.file.Pos(offset)

	switch ch := s.ch; {
	case ch == '#':
		s.next()
		return pos, s.scanColor()
	case ch == '@' && isLetter(rune(s.peekByte())):
		// "@import", "@media", ...: the directive's keyword token; a name
		// that is not a keyword stays an IDENT that keeps its '@'.
		s.next()
		lit = s.scanIdentifier()
		if tok = token.Lookup(lit); tok == token.IDENT {
			lit = "@" + lit
		}
		return pos, tok, lit
	case isLetter(ch):
		lit = s.scanIdentifier()
		if s.ch == '(' {
			return pos, token.FUNCTION, lit
		}
		tok = maybeMultiWordKeyword(s, lit)
		if tok == token.ILLEGAL {
			tok = token.Lookup(lit)
		}
		return pos, tok, lit
	case '0' <= ch && ch <= '9':
		tok, lit = s.scanNumber()
		return pos, tok, lit
	}

	if s.ch < 0 {
		// A source with no trailing newline never reaches consumeLayout's own
		// s.ch < 0 branch for its final line, so any still-open indent levels
		// must be flushed here the same way (spec §8: indent/outdent tokens
		// balance "up to and including eos").
		for len(s.indentStack) > 1 {
			s.indentStack = s.indentStack[:len(s.indentStack)-1]
			s.enqueue(pos, token.OUTDENT, "")
		}
		if len(s.queue) > 0 {
			p := s.queue[0]
			s.queue = s.queue[1:]
			return p.pos, p.tok, p.lit
		}
		return pos, token.EOF, ""
	}

	ch0 := s.ch
	s.next()
	switch ch0 {
	case '"', '\'':
		tok = token.STRING
		lit = s.scanString(ch0)
	case '.':
		if isDigit(s.ch) {
			// leading-dot float, e.g. ".5em"
			s.scanMantissa()
			numEnd := s.offset
			if isUnitStart(s.ch) {
				unitOffs := s.offset
				if s.ch == '%' {
					s.next()
				} else {
					for isLetter(s.ch) {
						s.next()
					}
				}
				return pos, token.UNIT, string(s.src[offset:unitOffs]) + "\x00" + string(s.src[unitOffs:s.offset])
			}
			return pos, token.FLOAT, string(s.src[offset:numEnd])
		} else if s.ch == '.' {
			s.next()
			if s.ch == '.' {
				s.next()
				tok = token.ELLIPSIS
			} else {
				tok = token.RANGE
			}
		} else {
			tok = token.ILLEGAL
			lit = "."
		}
	case ',':
		tok = token.COMMA
	case ';':
		tok = token.SEMI
	case ':':
		tok = token.COLON
	case '(':
		s.parenDepth++
		tok = token.LPAREN
	case ')':
		if s.parenDepth > 0 {
			s.parenDepth--
		}
		tok = token.RPAREN
	case '[':
		tok = token.LBRACK
	case ']':
		tok = token.RBRACK
	case '{':
		s.braceDepth++
		tok = token.LBRACE
	case '}':
		if s.braceDepth > 0 {
			s.braceDepth--
		}
		tok = token.RBRACE
	case '+':
		tok = s.switch2(token.ADD, token.ADD_ASGN)
	case '-':
		tok = s.switch2(token.SUB, token.SUB_ASGN)
	case '*':
		if s.ch == '*' {
			s.next()
			tok = token.POW
		} else {
			tok = s.switch2(token.MUL, token.MUL_ASGN)
		}
	case '/':
		if s.ch == '/' {
			s.skipLineComment()
			goto scanAgain
		}
		if s.ch == '*' {
			text := s.scanBlockComment()
			if s.allowComments {
				tok, lit = token.COMMENT, text
				return pos, tok, lit
			}
			goto scanAgain
		}
		tok = s.switch2(token.QUO, token.QUO_ASGN)
	case '%':
		tok = s.switch2(token.REM, token.REM_ASGN)
	case '=':
		if s.ch == '=' {
			s.next()
			tok = token.EQL
		} else {
			tok = s.switch2(token.ASSIGN, token.COND_ASGN)
		}
	case '!':
		tok = s.switch2(token.NOT, token.NEQ)
	case '<':
		tok = s.switch2(token.LSS, token.LEQ)
	case '>':
		tok = s.switch2(token.GTR, token.GEQ)
	case '&':
		if s.ch == '&' {
			s.next()
			tok = token.LAND
		} else {
			tok = token.AMP
		}
	case '|':
		if s.ch == '|' {
			s.next()
			tok = token.LOR
		} else {
			tok = token.ILLEGAL
			lit = "|"
		}
	case '~':
		tok = token.TILDE
	case '?':
		if s.ch == '=' {
			s.next()
			tok = token.COND_ASGN
		} else {
			tok = token.QUESTION
		}
	default:
		if ch0 != bom {
			s.error(offset, "illegal character")
		}
		tok = token.ILLEGAL
		lit = string(ch0)
	}
	return pos, tok, lit
}

// maybeMultiWordKeyword recognizes the two-word keywords "is a" and "is
// defined" (spec §3/§4.1) by examining the unconsumed source directly;
// only on a match does it advance the scanner past the second word.
// Otherwise it returns token.ILLEGAL so the caller falls back to the
// single-word keyword table.
func maybeMultiWordKeyword(s *Scanner, lit string) token.Token {
	if lit != "is" {
		return token.ILLEGAL
	}
	rest := s.src[s.offset:]
	if matchWord(rest, "a") {
		s.consumeWord("a")
		return token.IS_A
	}
	if matchWord(rest, "defined") {
		s.consumeWord("defined")
		return token.IS_DEFINED
	}
	return token.ILLEGAL
}

// consumeWord skips leading horizontal space and then the given word's
// worth of runes, assuming matchWord already confirmed it is present.
func (s *Scanner) consumeWord(word string) {
	s.skipHorizontalSpace()
	for range word {
		s.next()
	}
}

func matchWord(rest []byte, word string) bool {
	// skip leading horizontal space
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i+len(word) > len(rest) {
		return false
	}
	if string(rest[i:i+len(word)]) != word {
		return false
	}
	end := i + len(word)
	if end < len(rest) && isIdentRune(rune(rest[end])) {
		return false
	}
	return true
}
