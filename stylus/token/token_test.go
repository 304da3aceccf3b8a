package token

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestLookupKeywordVsIdent(t *testing.T) {
	qt.Assert(t, qt.Equals(Lookup("if"), IF))
	qt.Assert(t, qt.Equals(Lookup("true"), TRUE))
	qt.Assert(t, qt.Equals(Lookup("width"), IDENT))
}

func TestPositionStringFallsBackToDash(t *testing.T) {
	qt.Assert(t, qt.Equals(NoPos.String(), "-"))
}

func TestFilePositionTracksLines(t *testing.T) {
	f := NewFile("test.styl", 20)
	f.AddLine(5)
	f.AddLine(10)

	p := f.Pos(12)
	pos := p.Position()
	qt.Assert(t, qt.Equals(pos.Line, 3))
	qt.Assert(t, qt.Equals(pos.Column, 3))
}

func TestPosCompareOrdersNoPosLast(t *testing.T) {
	f := NewFile("test.styl", 10)
	a := f.Pos(1)
	qt.Assert(t, qt.Equals(a.Compare(NoPos), -1))
	qt.Assert(t, qt.Equals(NoPos.Compare(a), 1))
}
