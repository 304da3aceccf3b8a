package eval

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/token"
)

func newEvaluator() *Evaluator {
	e := NewEvaluator(Options{})
	e.stack.CurrentFrame().Block = ast.NewBlock(token.NoPos, true)
	return e
}

func TestEvalIdentAssignmentThenLookup(t *testing.T) {
	e := newEvaluator()

	_, err := e.evalIdent(&ast.Ident{Name: "$x", Val: ast.NewUnitFromInt(token.NoPos, 5, "px")})
	qt.Assert(t, qt.IsNil(err))

	got, err := e.evalIdent(&ast.Ident{Name: "$x"})
	qt.Assert(t, qt.IsNil(err))
	unit, ok := got.(*ast.Unit)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(unit.String(), "5px"))
}

func TestEvalIdentUndefinedLookupReturnsIdent(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalIdent(&ast.Ident{Name: "$missing"})
	qt.Assert(t, qt.IsNil(err))
	id, ok := got.(*ast.Ident)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(id.Name, "$missing"))
}

func TestEvalUnaryOpIsDefined(t *testing.T) {
	e := newEvaluator()
	e.stack.CurrentFrame().Scope.Add(&ast.Ident{Name: "$x", Val: &ast.Boolean{Value: true}})

	got, err := e.evalUnaryOp(&ast.UnaryOp{Op: token.IS_DEFINED, Expr: &ast.Ident{Name: "$x"}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.(*ast.Boolean).Value))

	got, err = e.evalUnaryOp(&ast.UnaryOp{Op: token.IS_DEFINED, Expr: &ast.Ident{Name: "$y"}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.(*ast.Boolean).Value))
}

func TestEvalUnaryOpNegatesUnit(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalUnaryOp(&ast.UnaryOp{Op: token.SUB, Expr: ast.NewUnitFromInt(token.NoPos, 5, "px")})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.(*ast.Unit).String(), "-5px"))
}

func TestEvalUnaryOpNot(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalUnaryOp(&ast.UnaryOp{Op: token.NOT_KW, Expr: &ast.Boolean{Value: true}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.(*ast.Boolean).Value))
}

func TestEvalBinOpArithmetic(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalBinOp(&ast.BinOp{
		Op:    token.ADD,
		Left:  ast.NewUnitFromInt(token.NoPos, 10, "px"),
		Right: ast.NewUnitFromInt(token.NoPos, 5, "px"),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.(*ast.Unit).String(), "15px"))
}

func TestEvalBinOpEqualityMismatchYieldsFalseNotError(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalBinOp(&ast.BinOp{
		Op:    token.EQL,
		Left:  ast.NewUnitFromInt(token.NoPos, 1, "px"),
		Right: &ast.String{Value: "px", Quote: '"'},
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.(*ast.Boolean).Value))
}

func TestEvalBinOpAmbiguousSlashIsLiteral(t *testing.T) {
	e := newEvaluator()
	got, err := e.evalBinOp(&ast.BinOp{
		Op:        token.QUO,
		Ambiguous: true,
		Left:      ast.NewUnitFromInt(token.NoPos, 12, "px"),
		Right:     ast.NewUnitFromInt(token.NoPos, 15, ""),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.(*ast.Literal).Text, "12px/15"))
}

func TestEvalRangeInclusiveVsExclusive(t *testing.T) {
	e := newEvaluator()

	incl, err := e.evalRange(&ast.BinOp{
		Op:    token.RANGE,
		Left:  ast.NewUnitFromInt(token.NoPos, 1, ""),
		Right: ast.NewUnitFromInt(token.NoPos, 3, ""),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(incl.(*ast.Expression).Nodes), 3))

	excl, err := e.evalRange(&ast.BinOp{
		Op:    token.ELLIPSIS,
		Left:  ast.NewUnitFromInt(token.NoPos, 1, ""),
		Right: ast.NewUnitFromInt(token.NoPos, 3, ""),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(excl.(*ast.Expression).Nodes), 2))
}

func TestEvalInMembership(t *testing.T) {
	e := newEvaluator()
	list := &ast.Expression{IsList: true, Nodes: []ast.Value{
		ast.NewUnitFromInt(token.NoPos, 1, ""),
		ast.NewUnitFromInt(token.NoPos, 2, ""),
	}}
	got, err := e.evalIn(ast.NewUnitFromInt(token.NoPos, 2, ""), list)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.(*ast.Boolean).Value))

	got, err = e.evalIn(ast.NewUnitFromInt(token.NoPos, 9, ""), list)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.(*ast.Boolean).Value))
}

func TestTypeOf(t *testing.T) {
	qt.Assert(t, qt.Equals(typeOf(ast.NewUnitFromInt(token.NoPos, 1, "px")), "unit"))
	qt.Assert(t, qt.Equals(typeOf(&ast.Color{R: 1, G: 2, B: 3, A: 1}), "color"))
	qt.Assert(t, qt.Equals(typeOf(&ast.String{Value: "x", Quote: '"'}), "string"))
	qt.Assert(t, qt.Equals(typeOf(&ast.Boolean{Value: true}), "boolean"))
	qt.Assert(t, qt.Equals(typeOf(&ast.Null{}), "null"))
}

func TestStringifyValue(t *testing.T) {
	qt.Assert(t, qt.Equals(stringifyValue(&ast.String{Value: "red", Quote: '"'}), "red"))
	qt.Assert(t, qt.Equals(stringifyValue(ast.NewUnitFromInt(token.NoPos, 10, "px")), "10px"))
}

func TestEvalEachItemsUnwrapsExpressionList(t *testing.T) {
	e := newEvaluator()
	each := &ast.Each{
		Val: "$i",
		Expr: &ast.Expression{IsList: false, Nodes: []ast.Value{
			ast.NewUnitFromInt(token.NoPos, 1, ""),
			ast.NewUnitFromInt(token.NoPos, 2, ""),
			ast.NewUnitFromInt(token.NoPos, 3, ""),
		}},
		Block: ast.NewBlock(token.NoPos, true),
	}
	items, err := e.evalEachItems(each)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(items), 3))
}

func TestInvokeUserFunctionReturnYieldsLastExpression(t *testing.T) {
	e := newEvaluator()
	body := ast.NewBlock(token.NoPos, true)
	body.Append(&ast.ExprStmt{X: &ast.BinOp{
		Op:    token.ADD,
		Left:  &ast.Ident{Name: "$a"},
		Right: &ast.Ident{Name: "$b"},
	}})
	fn := &ast.Function{
		Name:  "add",
		Block: body,
		Params: &ast.Params{List: []*ast.Param{
			{Name: "$a"},
			{Name: "$b"},
		}},
	}

	got, err := e.invokeUserFunctionReturn(fn, &ast.Call{}, []ast.Value{
		ast.NewUnitFromInt(token.NoPos, 2, "px"),
		ast.NewUnitFromInt(token.NoPos, 3, "px"),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.(*ast.Unit).String(), "5px"))
}

func TestBindCallFrameUsesDefaultForMissingArgument(t *testing.T) {
	e := newEvaluator()
	fn := &ast.Function{
		Name:  "pad",
		Block: ast.NewBlock(token.NoPos, true),
		Params: &ast.Params{List: []*ast.Param{
			{Name: "$n", Default: ast.NewUnitFromInt(token.NoPos, 1, "px")},
		}},
	}
	frame, _, err := e.bindCallFrame(fn, &ast.Call{}, nil)
	qt.Assert(t, qt.IsNil(err))
	bound, ok := frame.Scope.Lookup("$n")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(bound.Val.(*ast.Unit).String(), "1px"))
}

func TestBindCallFrameMissingArgumentNoDefaultErrors(t *testing.T) {
	e := newEvaluator()
	fn := &ast.Function{
		Name:  "pad",
		Block: ast.NewBlock(token.NoPos, true),
		Params: &ast.Params{List: []*ast.Param{
			{Name: "$n"},
		}},
	}
	_, _, err := e.bindCallFrame(fn, &ast.Call{}, nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestResolveCallableIsExactForUserFunctions(t *testing.T) {
	e := newEvaluator()
	e.bindFunction(&ast.Function{Name: "Pad", Block: ast.NewBlock(token.NoPos, true)})

	fn, ok := e.resolveCallable("Pad")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fn.Name, "Pad"))

	_, ok = e.resolveCallable("pad")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestResolveCallableFoldsOnlyNativeFallback(t *testing.T) {
	e := newEvaluator()
	fn, ok := e.resolveCallable("DARKEN")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(fn.IsNative()))
}

func TestLiteralCallEvaluatesArgumentsBeforeStringifying(t *testing.T) {
	e := newEvaluator()
	call := &ast.Call{
		Name: "translateX",
		Args: &ast.Expression{IsList: true, Nodes: []ast.Value{
			ast.NewUnitFromInt(token.NoPos, 10, "px"),
		}},
	}
	got, err := e.literalCall(call)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.(*ast.Literal).Text, "translateX(10px)"))
}
