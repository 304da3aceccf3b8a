package scope

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/ast"
)

func TestStackLookupShadowing(t *testing.T) {
	s := NewStack()
	outer := NewFrame(nil)
	outer.Scope.Add(&ast.Ident{Name: "$x", Val: &ast.Boolean{Value: false}})
	s.Push(outer)

	inner := NewFrame(nil)
	inner.Scope.Add(&ast.Ident{Name: "$x", Val: &ast.Boolean{Value: true}})
	s.Push(inner)

	got, ok := s.Lookup("$x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(got.Val.(*ast.Boolean).Value))

	s.Pop()
	got, ok = s.Lookup("$x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(got.Val.(*ast.Boolean).Value))
}

func TestStackLookupFunctionShadowsBuiltin(t *testing.T) {
	s := NewStack()
	global := NewFrame(nil)
	global.Scope.AddFunction(&ast.Function{Name: "darken", Builtin: func(args []ast.Value) (ast.Value, error) {
		return &ast.Boolean{Value: false}, nil
	}})
	s.Push(global)

	local := NewFrame(nil)
	local.Scope.AddFunction(&ast.Function{Name: "darken", Block: ast.NewBlock(0, true)})
	s.Push(local)

	fn, ok := s.LookupFunction("darken")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(fn.IsNative()))
}

func TestStackLookupMissing(t *testing.T) {
	s := NewStack()
	s.Push(NewFrame(nil))
	_, ok := s.Lookup("$missing")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestFrameNames(t *testing.T) {
	sc := NewScope()
	sc.Add(&ast.Ident{Name: "$a"})
	sc.Add(&ast.Ident{Name: "$b"})
	names := sc.Names()
	qt.Assert(t, qt.Equals(len(names), 2))
	qt.Assert(t, qt.IsTrue(names["$a"]))
	qt.Assert(t, qt.IsTrue(names["$b"]))
}

func TestStackDepthAndTrace(t *testing.T) {
	s := NewStack()
	qt.Assert(t, qt.Equals(s.Depth(), 0))

	f := NewFrame(nil)
	f.Mixin = "function"
	s.Push(f)
	qt.Assert(t, qt.Equals(s.Depth(), 1))
	qt.Assert(t, qt.Equals(s.Trace(), "  at function\n"))
}
