package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/ast"
)

func TestParseAssignment(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("$width = 10px\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(root.Block.Nodes), 1))

	stmt, ok := root.Block.Nodes[0].(*ast.ExprStmt)
	qt.Assert(t, qt.IsTrue(ok))
	id, ok := stmt.X.(*ast.Ident)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(id.Name, "$width"))

	unit, ok := id.Val.(*ast.Unit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(unit.String(), "10px"))
}

func TestParseProperty(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("a\n  color: red\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(root.Block.Nodes), 1))

	group, ok := root.Block.Nodes[0].(*ast.Group)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(group.Selectors), 1))
	qt.Assert(t, qt.Equals(group.Selectors[0].Text, "a"))
	qt.Assert(t, qt.Equals(len(group.Block.Nodes), 1))

	prop, ok := group.Block.Nodes[0].(*ast.Property)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prop.Name(), "color"))
}

func TestParseNestedSelector(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("a\n  b\n    color: red\n"))
	qt.Assert(t, qt.IsNil(err))

	outer, ok := root.Block.Nodes[0].(*ast.Group)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(outer.Block.Nodes), 1))

	inner, ok := outer.Block.Nodes[0].(*ast.Group)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(inner.Selectors[0].Text, "b"))
}

func TestParseSelectorInterpolation(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("item-{$v}\n  margin: $v\n"))
	qt.Assert(t, qt.IsNil(err))

	group, ok := root.Block.Nodes[0].(*ast.Group)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(group.Selectors), 1))

	segs := group.Selectors[0].Segments
	qt.Assert(t, qt.Equals(len(segs), 2))
	qt.Assert(t, qt.Equals(segs[0].Text, "item-"))
	qt.Assert(t, qt.IsNotNil(segs[1].Expr))
	ident, ok := segs[1].Expr.(*ast.Ident)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ident.Name, "$v"))
}

func TestParseBraceAfterSpaceOpensBlockNotInterpolation(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("a { color: red }\n"))
	qt.Assert(t, qt.IsNil(err))

	group, ok := root.Block.Nodes[0].(*ast.Group)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(group.Selectors[0].Text, "a"))
	qt.Assert(t, qt.Equals(len(group.Selectors[0].Segments), 1))
	qt.Assert(t, qt.IsNil(group.Selectors[0].Segments[0].Expr))
}

func TestParseIf(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("if $x\n  color: red\nelse\n  color: blue\n"))
	qt.Assert(t, qt.IsNil(err))

	ifNode, ok := root.Block.Nodes[0].(*ast.If)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(ifNode.Negate))
	qt.Assert(t, qt.Equals(len(ifNode.Elses), 1))
	qt.Assert(t, qt.IsNil(ifNode.Elses[0].Cond))
}

func TestParsePostfixIf(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("color: red if $x\n"))
	qt.Assert(t, qt.IsNil(err))

	ifNode, ok := root.Block.Nodes[0].(*ast.If)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(ifNode.Block.Nodes), 1))
	_, ok = ifNode.Block.Nodes[0].(*ast.Property)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseEach(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("for $item in $list\n  color: $item\n"))
	qt.Assert(t, qt.IsNil(err))

	each, ok := root.Block.Nodes[0].(*ast.Each)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(each.Val, "$item"))
	qt.Assert(t, qt.Equals(each.Key, ""))
}

func TestParseFunctionDefinition(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("add($a, $b = 1)\n  return $a + $b\n"))
	qt.Assert(t, qt.IsNil(err))

	fn, ok := root.Block.Nodes[0].(*ast.Function)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fn.Name, "add"))
	qt.Assert(t, qt.Equals(len(fn.Params.List), 2))
	qt.Assert(t, qt.Equals(fn.Params.List[0].Name, "$a"))
	qt.Assert(t, qt.Equals(fn.Params.List[1].Name, "$b"))
	qt.Assert(t, qt.IsNotNil(fn.Params.List[1].Default))
}

func TestParseImport(t *testing.T) {
	root, err := ParseFile("test.styl", []byte(`@import "mixins"` + "\n"))
	qt.Assert(t, qt.IsNil(err))

	imp, ok := root.Block.Nodes[0].(*ast.Import)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(imp.Path, "mixins"))
}

func TestParseMedia(t *testing.T) {
	root, err := ParseFile("test.styl", []byte("@media screen\n  a\n    color: red\n"))
	qt.Assert(t, qt.IsNil(err))

	_, ok := root.Block.Nodes[0].(*ast.Media)
	qt.Assert(t, qt.IsTrue(ok))
}
