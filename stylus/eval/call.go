package eval

import (
	"strings"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/scope"
)

// resolveCallable implements spec §4.4 Calls step 1-2: a top-down walk of
// the frame stack for a bound Function, user-defined or built-in -- both
// live in the same per-frame function map, so a user function naturally
// shadows a built-in of the same name. Resolution is by exact name first
// (user-defined mixins and host functions are looked up verbatim, as parsed
// and as registered); only when that misses does a case-folded retry kick
// in, and then only a native (built-in or host) function may answer it --
// case-insensitive resolution is a built-in-name convenience, never applied
// to a user-defined mixin (spec §4.4 "Resolve name via stack lookup" names
// no folding).
func (e *Evaluator) resolveCallable(name string) (*ast.Function, bool) {
	if fn, ok := e.stack.LookupFunction(name); ok {
		return fn, true
	}
	if folded := e.foldName(name); folded != name {
		if fn, ok := e.stack.LookupFunction(folded); ok && fn.IsNative() {
			return fn, true
		}
	}
	return nil, false
}

// evalArgs reduces a call's argument list. Raw functions receive the
// unreduced Expression nodes (spec §4.4 "Built-in invocation": "Host
// functions may declare raw = true to receive full expression arguments").
func (e *Evaluator) evalArgs(args *ast.Expression, raw bool) ([]ast.Value, error) {
	if args == nil {
		return nil, nil
	}
	if raw {
		return append([]ast.Value{}, args.Nodes...), nil
	}
	out := make([]ast.Value, 0, len(args.Nodes))
	for _, n := range args.Nodes {
		v, err := e.evalValueReturn(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v.First())
	}
	return out, nil
}

// evalCallValue invokes call in return mode: a value is required (an
// argument, a condition, an assignment right-hand side, ...).
func (e *Evaluator) evalCallValue(call *ast.Call) (ast.Value, error) {
	if fn, ok := e.resolveCallable(call.Name); ok {
		if fn.IsNative() {
			return e.invokeNative(fn, call)
		}
		args, err := e.evalArgs(call.Args, false)
		if err != nil {
			return nil, err
		}
		return e.invokeUserFunctionReturn(fn, call, args)
	}
	return e.literalCall(call)
}

// evalCallStmt invokes call in mixin mode: a statement-level call, whose
// user-function body gets spliced into out rather than reduced to a value.
func (e *Evaluator) evalCallStmt(call *ast.Call, out *ast.Block) error {
	if fn, ok := e.resolveCallable(call.Name); ok {
		if fn.IsNative() {
			v, err := e.invokeNative(fn, call)
			if err != nil {
				return err
			}
			out.Append(&ast.ExprStmt{X: v})
			return nil
		}
		args, err := e.evalArgs(call.Args, false)
		if err != nil {
			return err
		}
		return e.invokeUserFunctionMixin(fn, call, args, out)
	}
	v, err := e.literalCall(call)
	if err != nil {
		return err
	}
	out.Append(&ast.ExprStmt{X: v})
	return nil
}

// invokeNative calls a host/built-in Function. Its result is wrapped in an
// Expression before returning (spec §4.4 "Built-in invocation": "the return
// value is wrapped in an expression before invoking").
func (e *Evaluator) invokeNative(fn *ast.Function, call *ast.Call) (ast.Value, error) {
	args, err := e.evalArgs(call.Args, fn.Raw)
	if err != nil {
		return nil, err
	}
	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > maxCallDepth {
		return nil, errors.NewStackOverflowError(call.Pos(), e.callDepth)
	}
	v, err := fn.Builtin(args)
	if err != nil {
		return nil, errors.NewHostFunctionError(call.Pos(), call.Name, err)
	}
	return &ast.Expression{ExprPos: call.Pos(), Nodes: []ast.Value{v}}, nil
}

// literalCall implements the "literal" fallback (spec glossary "Literal
// call"): nothing resolves for call.Name, so its arguments are reduced and
// the call is re-emitted verbatim, producing CSS like calc(100% - 10px).
func (e *Evaluator) literalCall(call *ast.Call) (ast.Value, error) {
	args, err := e.evalArgs(call.Args, false)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = stringifyValue(a)
	}
	text := call.Name + "(" + strings.Join(parts, ", ") + ")"
	return &ast.Literal{LitPos: call.Pos(), Text: text}, nil
}

// bindCallFrame clones fn's body, binds its parameters positionally, and
// pushes the recursion guard (spec §4.4 "User function invocation"). The
// caller is responsible for pushing/popping the returned frame and
// decrementing callDepth once invocation completes.
func (e *Evaluator) bindCallFrame(fn *ast.Function, at ast.Node, args []ast.Value) (*scope.Frame, *ast.Block, error) {
	e.callDepth++
	if e.callDepth > maxCallDepth {
		e.callDepth--
		return nil, nil, errors.NewStackOverflowError(at.Pos(), e.callDepth)
	}

	clonedFn := fn.Clone().(*ast.Function)
	frame := scope.NewFrame(clonedFn.Block)
	frame.Mixin = "function"

	var params []*ast.Param
	if clonedFn.Params != nil {
		params = clonedFn.Params.List
	}
	ai := 0
	for _, p := range params {
		if p.Rest {
			rest := &ast.Expression{ExprPos: at.Pos(), IsList: true}
			for ; ai < len(args); ai++ {
				rest.Append(args[ai])
			}
			frame.Scope.Add(&ast.Ident{Name: p.Name, Val: rest})
			continue
		}
		var val ast.Value
		switch {
		case ai < len(args):
			val = args[ai]
			ai++
		case p.Default != nil:
			dv, err := e.evalValueReturn(p.Default)
			if err != nil {
				e.callDepth--
				return nil, nil, err
			}
			val = dv
		default:
			e.callDepth--
			return nil, nil, errors.NewMissingArgumentError(at.Pos(), fn.Name, p.Name)
		}
		frame.Scope.Add(&ast.Ident{Name: p.Name, Val: val})
	}

	argList := &ast.Expression{ExprPos: at.Pos(), IsList: true, Nodes: append([]ast.Value{}, args...)}
	frame.Scope.Add(&ast.Ident{Name: "arguments", Val: argList})
	return frame, clonedFn.Block, nil
}

// invokeUserFunctionReturn invokes fn in return mode, yielding a value
// (spec §4.4 "Invoke semantics: Return mode").
func (e *Evaluator) invokeUserFunctionReturn(fn *ast.Function, at ast.Node, args []ast.Value) (ast.Value, error) {
	frame, body, err := e.bindCallFrame(fn, at, args)
	if err != nil {
		return nil, err
	}
	frame.Scope.Add(&ast.Ident{Name: "mixin", Val: &ast.Boolean{Value: false}})

	e.stack.Push(frame)
	val, _, err := e.invokeBody(body)
	e.stack.Pop()
	e.callDepth--
	if err != nil {
		return nil, err
	}
	if val == nil {
		return &ast.Null{NullPos: at.Pos()}, nil
	}
	return val, nil
}

// invokeUserFunctionMixin invokes fn in mixin mode, splicing its body's
// statements into out (spec §4.4 "Invoke semantics: Mixin mode").
func (e *Evaluator) invokeUserFunctionMixin(fn *ast.Function, at ast.Node, args []ast.Value, out *ast.Block) error {
	frame, body, err := e.bindCallFrame(fn, at, args)
	if err != nil {
		return err
	}
	enclosing := ""
	if cf := e.stack.CurrentFrame(); cf != nil {
		enclosing = cf.Mixin
	}
	frame.Scope.Add(&ast.Ident{Name: "mixin", Val: &ast.String{Value: enclosing, Quote: '"'}})

	e.stack.Push(frame)
	err = e.evalBlockInto(body, out)
	e.stack.Pop()
	e.callDepth--
	return err
}

// invokeBody walks a function body in return mode: it evaluates statements
// sequentially, stopping at the first Return (its own, or one nested inside
// an If/Each branch it recurses into), and otherwise yields the value of
// the last statement visited (spec §4.4 "scan the evaluated body for the
// first Return statement or nested block returning one; if none, yield the
// last statement").
func (e *Evaluator) invokeBody(block *ast.Block) (value ast.Value, returned bool, err error) {
	var last ast.Value
	for _, n := range block.Nodes {
		switch v := n.(type) {
		case *ast.Return:
			if v.Expr != nil {
				rv, err := e.evalValueReturn(v.Expr)
				if err != nil {
					return nil, false, err
				}
				return rv, true, nil
			}
			return nil, true, nil

		case *ast.If:
			branch, err := e.selectIfBranch(v)
			if err != nil {
				return nil, false, err
			}
			if branch == nil {
				continue
			}
			val, ret, err := e.invokeBody(branch)
			if err != nil {
				return nil, false, err
			}
			if ret {
				return val, true, nil
			}
			last = val

		case *ast.Each:
			val, ret, err := e.invokeEachBody(v)
			if err != nil {
				return nil, false, err
			}
			if ret {
				return val, true, nil
			}
			last = val

		case *ast.Function:
			e.bindFunction(v)

		case *ast.ExprStmt:
			if call, ok := v.X.(*ast.Call); ok {
				val, err := e.evalCallValue(call)
				if err != nil {
					return nil, false, err
				}
				last = val
				continue
			}
			val, err := e.evalValueReturn(v.X)
			if err != nil {
				return nil, false, err
			}
			last = val

		case *ast.Property:
			if v.Expr == nil {
				continue
			}
			val, err := e.evalValueReturn(v.Expr)
			if err != nil {
				return nil, false, err
			}
			last = val

		case *ast.Call:
			val, err := e.evalCallValue(v)
			if err != nil {
				return nil, false, err
			}
			last = val

		default:
			// Group/Media/Page/Keyframes/Import/Charset inside a function
			// body contribute no return value; run them for side effects
			// only (rare in practice).
			tmp := ast.NewBlock(n.Pos(), false)
			if err := e.evalStmt(n, tmp); err != nil {
				return nil, false, err
			}
			last = nil
		}
	}
	return last, false, nil
}

// selectIfBranch evaluates an If's condition chain and returns the Block to
// execute, or nil if no branch (including a final else) applies.
func (e *Evaluator) selectIfBranch(n *ast.If) (*ast.Block, error) {
	if n.Cond != nil {
		v, err := e.evalValueReturn(n.Cond)
		if err != nil {
			return nil, err
		}
		ok := v.ToBoolean().Value
		if n.Negate {
			ok = !ok
		}
		if ok {
			return n.Block, nil
		}
	} else {
		return n.Block, nil
	}
	for _, el := range n.Elses {
		if el.Cond == nil {
			return el.Block, nil
		}
		v, err := e.evalValueReturn(el.Cond)
		if err != nil {
			return nil, err
		}
		ok := v.ToBoolean().Value
		if el.Negate {
			ok = !ok
		}
		if ok {
			return el.Block, nil
		}
	}
	return nil, nil
}

// evalEachItems reduces an Each's iterable expression and unwraps it into
// its element values (spec §4.4 "visitEach evaluates the iterable
// expression, unwraps lists").
func (e *Evaluator) evalEachItems(each *ast.Each) ([]ast.Value, error) {
	v, err := e.evalValueReturn(each.Expr)
	if err != nil {
		return nil, err
	}
	if list, ok := v.(*ast.Expression); ok {
		return list.Nodes, nil
	}
	return []ast.Value{v}, nil
}

// withEachFrame binds val/key (index) for one iteration, clones the loop
// body, and runs fn against the clone. The bindings go into a new frame
// when the loop body is Scoped, otherwise into the current frame.
func (e *Evaluator) withEachFrame(each *ast.Each, item ast.Value, index int, fn func(*ast.Block) error) error {
	if each.Block.Scoped {
		frame := scope.NewFrame(each.Block)
		frame.Mixin = "for"
		e.stack.Push(frame)
		defer e.stack.Pop()
	}
	sc := e.stack.CurrentFrame().Scope
	sc.Add(&ast.Ident{Name: each.Val, Val: item})
	keyName := each.Key
	if keyName == "" {
		keyName = "__index__"
	}
	sc.Add(&ast.Ident{Name: keyName, Val: ast.NewUnitFromInt(each.EachPos, int64(index), "")})

	cloned := each.Block.Clone().(*ast.Block)
	return fn(cloned)
}

// invokeEachBody is invokeBody's counterpart for @for loops reached while
// scanning a function body in return mode.
func (e *Evaluator) invokeEachBody(each *ast.Each) (ast.Value, bool, error) {
	items, err := e.evalEachItems(each)
	if err != nil {
		return nil, false, err
	}
	var last ast.Value
	for i, item := range items {
		var val ast.Value
		var ret bool
		err := e.withEachFrame(each, item, i, func(b *ast.Block) error {
			v, r, err := e.invokeBody(b)
			val, ret = v, r
			return err
		})
		if err != nil {
			return nil, false, err
		}
		if ret {
			return val, true, nil
		}
		last = val
	}
	return last, false, nil
}
