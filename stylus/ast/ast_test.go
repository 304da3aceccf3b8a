package ast

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/token"
)

func TestBlockCloneIsDeep(t *testing.T) {
	orig := NewBlock(token.NoPos, true)
	orig.Append(&Property{Segments: []Segment{{Text: "color"}}})

	clone := orig.Clone().(*Block)
	clone.Nodes[0].(*Property).Segments[0].Text = "background"

	qt.Assert(t, qt.Equals(orig.Nodes[0].(*Property).Segments[0].Text, "color"))
	qt.Assert(t, qt.Equals(clone.Nodes[0].(*Property).Segments[0].Text, "background"))
}

func TestSelectorCloneDeepCopiesSegments(t *testing.T) {
	orig := &Selector{Text: "item-", Segments: []Segment{
		{Text: "item-"},
		{Expr: &Ident{Name: "$v"}},
	}}

	clone := orig.Clone().(*Selector)
	clone.Segments[0].Text = "row-"

	qt.Assert(t, qt.Equals(orig.Segments[0].Text, "item-"))
	qt.Assert(t, qt.Equals(clone.Segments[0].Text, "row-"))
	qt.Assert(t, qt.Equals(clone.Segments[1].Expr.(*Ident).Name, "$v"))
	qt.Assert(t, qt.IsNil(clone.Parent))
}

func TestBlockSpliceFlattensNestedBlock(t *testing.T) {
	b := NewBlock(token.NoPos, true)
	b.Append(&ExprStmt{X: &String{Value: "before", Quote: '"'}})
	b.Append(&ExprStmt{X: &String{Value: "replace-me", Quote: '"'}})
	b.Append(&ExprStmt{X: &String{Value: "after", Quote: '"'}})

	replacement := &Block{Nodes: []Node{
		&ExprStmt{X: &String{Value: "r1", Quote: '"'}},
		&ExprStmt{X: &String{Value: "r2", Quote: '"'}},
	}}
	b.Splice(1, replacement)

	qt.Assert(t, qt.Equals(len(b.Nodes), 4))
	qt.Assert(t, qt.Equals(b.Nodes[0].(*ExprStmt).X.(*String).Value, "before"))
	qt.Assert(t, qt.Equals(b.Nodes[1].(*ExprStmt).X.(*String).Value, "r1"))
	qt.Assert(t, qt.Equals(b.Nodes[2].(*ExprStmt).X.(*String).Value, "r2"))
	qt.Assert(t, qt.Equals(b.Nodes[3].(*ExprStmt).X.(*String).Value, "after"))
}

func TestExpressionStringJoinsBySeparator(t *testing.T) {
	list := &Expression{IsList: true, Nodes: []Value{
		NewUnitFromInt(token.NoPos, 1, "px"),
		NewUnitFromInt(token.NoPos, 2, "px"),
	}}
	qt.Assert(t, qt.Equals(list.String(), "1px, 2px"))

	seq := &Expression{IsList: false, Nodes: []Value{
		NewUnitFromInt(token.NoPos, 1, "px"),
		&String{Value: "solid", Quote: '"'},
	}}
	qt.Assert(t, qt.Equals(seq.String(), "1px solid"))
}

func TestExpressionFirstUnwrapsNested(t *testing.T) {
	inner := &Expression{Nodes: []Value{NewUnitFromInt(token.NoPos, 7, "px")}}
	outer := &Expression{Nodes: []Value{inner}}
	first, ok := outer.First().(*Unit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(first.String(), "7px"))
}

func TestExpressionToBooleanUsesLastNode(t *testing.T) {
	expr := &Expression{Nodes: []Value{
		&Boolean{Value: true},
		&Null{},
	}}
	qt.Assert(t, qt.IsFalse(expr.ToBoolean().Value))
}

func TestUnitNegate(t *testing.T) {
	u := NewUnitFromInt(token.NoPos, 5, "px")
	neg := u.Negate()
	qt.Assert(t, qt.Equals(neg.String(), "-5px"))
	qt.Assert(t, qt.Equals(u.String(), "5px"), qt.Commentf("negate must not mutate the receiver"))
}

func TestColorStringHexVsRGBA(t *testing.T) {
	opaque := &Color{R: 0xe6, G: 0xe6, B: 0xe6, A: 1}
	qt.Assert(t, qt.Equals(opaque.String(), "#e6e6e6"))

	translucent := &Color{R: 255, G: 0, B: 0, A: 0.5}
	qt.Assert(t, qt.Equals(translucent.String(), "rgba(255,0,0,0.5)"))
}
