package scanner

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/token"
)

// scanAll drives a Scanner to EOF and returns the (tok, lit) pairs it
// produced, omitting position information irrelevant to these assertions.
func scanAll(t *testing.T, src string) []tokLit {
	t.Helper()
	file := token.NewFile("test.styl", len(src))
	var s Scanner
	var errs []string
	s.Init(file, []byte(src), func(pos token.Pos, msg string) {
		errs = append(errs, msg)
	})

	var got []tokLit
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		got = append(got, tokLit{tok, lit})
	}
	qt.Assert(t, qt.Equals(len(errs), 0), qt.Commentf("unexpected scan errors: %v", errs))
	return got
}

type tokLit struct {
	Tok token.Token
	Lit string
}

func TestScanIdentsAndOperators(t *testing.T) {
	got := scanAll(t, "width = 10px + 2")
	want := []tokLit{
		{token.IDENT, "width"},
		{token.ASSIGN, ""},
		{token.UNIT, "10\x00px"},
		{token.ADD, ""},
		{token.INT, "2"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanColor(t *testing.T) {
	got := scanAll(t, "#fff")
	qt.Assert(t, qt.Equals(len(got), 1))
	qt.Assert(t, qt.Equals(got[0].Tok, token.COLOR))
	qt.Assert(t, qt.Equals(got[0].Lit, "#fff"))
}

func TestScanString(t *testing.T) {
	got := scanAll(t, `"hello world"`)
	qt.Assert(t, qt.DeepEquals(got, []tokLit{{token.STRING, `"hello world"`}}))
}

func TestScanMultiWordKeywords(t *testing.T) {
	got := scanAll(t, "foo is a bar")
	want := []tokLit{
		{token.IDENT, "foo"},
		{token.IS_A, "is"},
		{token.IDENT, "bar"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanIsDefined(t *testing.T) {
	got := scanAll(t, "$x is defined")
	want := []tokLit{
		{token.IDENT, "$x"},
		{token.IS_DEFINED, "is"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanIndentOutdent(t *testing.T) {
	src := "a\n  b\nc\n"
	got := scanAll(t, src)
	var layout []token.Token
	for _, tl := range got {
		switch tl.Tok {
		case token.INDENT, token.OUTDENT, token.NEWLINE:
			layout = append(layout, tl.Tok)
		}
	}
	qt.Assert(t, qt.DeepEquals(layout, []token.Token{token.INDENT, token.OUTDENT}))
}

func TestScanFlushesOutdentsWithoutTrailingNewline(t *testing.T) {
	got := scanAll(t, "a\n  color: red")
	var layout []token.Token
	for _, tl := range got {
		switch tl.Tok {
		case token.INDENT, token.OUTDENT, token.NEWLINE:
			layout = append(layout, tl.Tok)
		}
	}
	qt.Assert(t, qt.DeepEquals(layout, []token.Token{token.INDENT, token.OUTDENT}))
}

func TestScanRangeVsEllipsis(t *testing.T) {
	got := scanAll(t, "1..5 1...5")
	var ops []token.Token
	for _, tl := range got {
		if tl.Tok == token.RANGE || tl.Tok == token.ELLIPSIS {
			ops = append(ops, tl.Tok)
		}
	}
	qt.Assert(t, qt.DeepEquals(ops, []token.Token{token.RANGE, token.ELLIPSIS}))
}
