package eval

import (
	"fmt"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/token"
)

// evalValueReturn reduces v to a concrete Value under return mode: the mode
// used whenever a value (rather than a spliced statement list) is required
// -- argument evaluation, conditions, assignment right-hand sides,
// interpolation segments, property expressions (spec §4.4 "State machine").
func (e *Evaluator) evalValueReturn(v ast.Value) (ast.Value, error) {
	switch n := v.(type) {
	case nil:
		return &ast.Null{}, nil
	case *ast.String, *ast.Unit, *ast.Color, *ast.Boolean, *ast.Null, *ast.Literal:
		return v, nil
	case *ast.Ident:
		return e.evalIdent(n)
	case *ast.BinOp:
		return e.evalBinOp(n)
	case *ast.UnaryOp:
		return e.evalUnaryOp(n)
	case *ast.Ternary:
		return e.evalTernary(n)
	case *ast.Expression:
		return e.evalExpression(n)
	case *ast.Call:
		return e.evalCallValue(n)
	}
	return nil, fmt.Errorf("eval: cannot evaluate %T as a value", v)
}

// evalIdent implements visitIdent (spec §4.4): val == nil is a lookup
// (undefined names are returned unchanged, to be emitted literally); any
// other val is an assignment, bound into the current frame's scope.
func (e *Evaluator) evalIdent(id *ast.Ident) (ast.Value, error) {
	if id.Val != nil {
		rhs, err := e.evalValueReturn(id.Val)
		if err != nil {
			return nil, err
		}
		e.stack.CurrentFrame().Scope.Add(&ast.Ident{NamePos: id.NamePos, Name: id.Name, Val: rhs})
		return rhs, nil
	}
	if bound, ok := e.stack.Lookup(id.Name); ok {
		if bound.Val == nil {
			return &ast.Null{NullPos: id.NamePos}, nil
		}
		return bound.Val, nil
	}
	return id, nil
}

func (e *Evaluator) evalTernary(t *ast.Ternary) (ast.Value, error) {
	c, err := e.evalValueReturn(t.Cond)
	if err != nil {
		return nil, err
	}
	if c.ToBoolean().Value {
		return e.evalValueReturn(t.True)
	}
	return e.evalValueReturn(t.False)
}

// evalExpression reduces every node of expr and collapses a single-node
// result to that node directly ("unwrap singleton expressions", spec §4.4
// Calls step 1, applied generally here).
func (e *Evaluator) evalExpression(expr *ast.Expression) (ast.Value, error) {
	out := &ast.Expression{ExprPos: expr.ExprPos, IsList: expr.IsList}
	for _, n := range expr.Nodes {
		v, err := e.evalValueReturn(n)
		if err != nil {
			return nil, err
		}
		out.Append(v)
	}
	if len(out.Nodes) == 1 {
		return out.Nodes[0], nil
	}
	return out, nil
}

func (e *Evaluator) evalUnaryOp(u *ast.UnaryOp) (ast.Value, error) {
	switch u.Op {
	case token.IS_DEFINED:
		// Bypasses evaluation of the operand; only scope membership matters
		// (spec §4.4 "is defined bypasses evaluation of its operand").
		if id, ok := u.Expr.(*ast.Ident); ok {
			_, found := e.stack.Lookup(id.Name)
			return &ast.Boolean{Value: found}, nil
		}
		return &ast.Boolean{Value: true}, nil

	case token.NOT_KW, token.NOT:
		v, err := e.evalValueReturn(u.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Boolean{Value: !v.ToBoolean().Value}, nil

	case token.SUB:
		v, err := e.evalValueReturn(u.Expr)
		if err != nil {
			return nil, err
		}
		if unit, ok := v.First().(*ast.Unit); ok {
			return unit.Negate(), nil
		}
		// A unary minus against a non-numeric ident forms a two-node
		// expression ("-foo") rather than failing to negate it (spec §4.4
		// "visitBinOp": "a unary-minus against an ident is special-cased to
		// form an expression of two nodes rather than a subtraction").
		return &ast.Expression{ExprPos: u.OpPos, Nodes: []ast.Value{
			&ast.Literal{LitPos: u.OpPos, Text: "-"}, v,
		}}, nil

	case token.ADD:
		v, err := e.evalValueReturn(u.Expr)
		if err != nil {
			return nil, err
		}
		return v.First(), nil

	case token.TILDE:
		v, err := e.evalValueReturn(u.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{LitPos: u.OpPos, Text: "~" + stringifyValue(v.First())}, nil
	}
	return nil, fmt.Errorf("eval: unsupported unary operator %s", u.Op)
}

func (e *Evaluator) evalBinOp(b *ast.BinOp) (ast.Value, error) {
	switch b.Op {
	case token.RANGE, token.ELLIPSIS:
		return e.evalRange(b)
	case token.IN:
		lv, err := e.evalValueReturn(b.Left)
		if err != nil {
			return nil, err
		}
		rv, err := e.evalValueReturn(b.Right)
		if err != nil {
			return nil, err
		}
		return e.evalIn(lv.First(), rv)
	case token.IS_A:
		lv, err := e.evalValueReturn(b.Left)
		if err != nil {
			return nil, err
		}
		rv, err := e.evalValueReturn(b.Right)
		if err != nil {
			return nil, err
		}
		want := e.foldName(stringifyValue(rv.First()))
		return &ast.Boolean{Value: e.foldName(typeOf(lv.First())) == want}, nil
	}

	lv, err := e.evalValueReturn(b.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.evalValueReturn(b.Right)
	if err != nil {
		return nil, err
	}

	// CSS shorthand division ("font: 12px/1.5") is preserved literally
	// rather than evaluated (spec §9 Open Question, §8 boundary case).
	if b.Ambiguous {
		return &ast.Literal{LitPos: b.OpPos, Text: stringifyValue(lv.First()) + "/" + stringifyValue(rv.First())}, nil
	}

	lp, rp := lv.First(), rv.First()
	result, err := lp.Operate(b.Op, rp)
	if err != nil {
		// "For ==/!=, a coercion failure yields false rather than
		// propagating an error; for other operators it propagates" (spec
		// §4.4 visitBinOp).
		if b.Op == token.EQL {
			return &ast.Boolean{Value: false}, nil
		}
		if b.Op == token.NEQ {
			return &ast.Boolean{Value: true}, nil
		}
		return nil, errors.NewTypeError(b.OpPos, err.Error())
	}
	return result, nil
}

func (e *Evaluator) evalIn(needle ast.Value, haystack ast.Value) (ast.Value, error) {
	list, ok := haystack.(*ast.Expression)
	if !ok {
		eq, err := needle.Operate(token.EQL, haystack.First())
		if err != nil {
			return &ast.Boolean{Value: false}, nil
		}
		return eq, nil
	}
	for _, item := range list.Nodes {
		eq, err := needle.Operate(token.EQL, item.First())
		if err == nil {
			if b, ok := eq.(*ast.Boolean); ok && b.Value {
				return &ast.Boolean{Value: true}, nil
			}
		}
	}
	return &ast.Boolean{Value: false}, nil
}

// evalRange expands "lo..hi" (inclusive) or "lo...hi" (exclusive) into a
// list Expression of Unit values, used directly by @for iteration and by
// any other expression context a range appears in.
func (e *Evaluator) evalRange(b *ast.BinOp) (ast.Value, error) {
	lv, err := e.evalValueReturn(b.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.evalValueReturn(b.Right)
	if err != nil {
		return nil, err
	}
	lu, ok1 := lv.First().(*ast.Unit)
	ru, ok2 := rv.First().(*ast.Unit)
	if !ok1 || !ok2 {
		return nil, errors.NewTypeError(b.OpPos, "range bounds must be numbers")
	}
	lo, err := lu.Value.Int64()
	if err != nil {
		return nil, errors.NewTypeError(b.OpPos, "range bounds must be whole numbers")
	}
	hi, err := ru.Value.Int64()
	if err != nil {
		return nil, errors.NewTypeError(b.OpPos, "range bounds must be whole numbers")
	}
	list := &ast.Expression{ExprPos: b.OpPos, IsList: true}
	if b.Op == token.RANGE {
		for i := lo; i <= hi; i++ {
			list.Append(ast.NewUnitFromInt(b.OpPos, i, ""))
		}
	} else {
		for i := lo; i < hi; i++ {
			list.Append(ast.NewUnitFromInt(b.OpPos, i, ""))
		}
	}
	return list, nil
}

// typeOf names the runtime category of a reduced Value, used by the `type`
// built-in and by `is a` type-checks.
func typeOf(v ast.Value) string {
	switch v.(type) {
	case *ast.Unit:
		return "unit"
	case *ast.Color:
		return "color"
	case *ast.String:
		return "string"
	case *ast.Boolean:
		return "boolean"
	case *ast.Null:
		return "null"
	case *ast.Ident:
		return "ident"
	case *ast.Literal:
		return "literal"
	case *ast.Expression:
		return "expression"
	default:
		return "object"
	}
}

// stringifyValue renders v the way the printer/literal-call fallback would,
// reusing Expression.String's stringify table via a singleton wrapper rather
// than duplicating it.
func stringifyValue(v ast.Value) string {
	return (&ast.Expression{Nodes: []ast.Value{v}}).String()
}
