package printer

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

func segExpr(v ast.Value) *ast.Expression {
	e := &ast.Expression{}
	e.Append(v)
	return e
}

func property(name string, v ast.Value) *ast.Property {
	return &ast.Property{
		Segments: []ast.Segment{{Text: name}},
		Expr:     segExpr(v),
	}
}

func unit(value string) *ast.Unit {
	u, err := ast.NewUnit(token.NoPos, value, "px")
	if err != nil {
		panic(err)
	}
	return u
}

func TestPrintFlatRule(t *testing.T) {
	block := ast.NewBlock(token.NoPos, true)
	group := &ast.Group{Selectors: []*ast.Selector{{Text: "a"}}, Block: ast.NewBlock(token.NoPos, true)}
	group.Block.Append(property("color", &ast.String{Value: "red", Quote: '"'}))
	block.Append(group)

	got := Print(block, Options{})
	want := "a {\n  color: red;\n}\n"
	qt.Assert(t, qt.Equals(got, want))
}

func TestPrintNestedSelectorJoinsWithDescendantCombinator(t *testing.T) {
	block := ast.NewBlock(token.NoPos, true)
	outer := &ast.Group{Selectors: []*ast.Selector{{Text: "a"}}, Block: ast.NewBlock(token.NoPos, true)}
	inner := &ast.Group{Selectors: []*ast.Selector{{Text: "b"}}, Block: ast.NewBlock(token.NoPos, true)}
	inner.Block.Append(property("color", unit("10")))
	outer.Block.Append(inner)
	block.Append(outer)

	got := Print(block, Options{})
	want := "a b {\n  color: 10px;\n}\n"
	qt.Assert(t, qt.Equals(got, want))
}

func TestPrintAmpersandSubstitution(t *testing.T) {
	block := ast.NewBlock(token.NoPos, true)
	outer := &ast.Group{Selectors: []*ast.Selector{{Text: "a"}}, Block: ast.NewBlock(token.NoPos, true)}
	inner := &ast.Group{Selectors: []*ast.Selector{{Text: "&:hover"}}, Block: ast.NewBlock(token.NoPos, true)}
	inner.Block.Append(property("color", &ast.String{Value: "blue", Quote: '"'}))
	outer.Block.Append(inner)
	block.Append(outer)

	got := Print(block, Options{})
	want := "a:hover {\n  color: blue;\n}\n"
	qt.Assert(t, qt.Equals(got, want))
}

func TestPrintDirectAndNestedPropertiesBothEmitOnce(t *testing.T) {
	block := ast.NewBlock(token.NoPos, true)
	outer := &ast.Group{Selectors: []*ast.Selector{{Text: "a"}}, Block: ast.NewBlock(token.NoPos, true)}
	outer.Block.Append(property("display", &ast.String{Value: "block", Quote: '"'}))
	inner := &ast.Group{Selectors: []*ast.Selector{{Text: "b"}}, Block: ast.NewBlock(token.NoPos, true)}
	inner.Block.Append(property("color", &ast.String{Value: "red", Quote: '"'}))
	outer.Block.Append(inner)
	block.Append(outer)

	got := Print(block, Options{})
	want := "a {\n  display: block;\n}\na b {\n  color: red;\n}\n"
	qt.Assert(t, qt.Equals(got, want))
}
