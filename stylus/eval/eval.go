// Package eval implements the stylus Evaluator (spec §4.4): a visitor that
// walks the parsed AST, resolves identifiers, dispatches calls across the
// three call conventions (user function, host/built-in, literal fallback),
// expands mixins, and produces a reduced AST the printer can render.
//
// Return vs. mixin control flow is modeled as the spec's own design notes
// suggest: rather than a mutable "return" flag plus exception-style
// unwinding, invocation in return mode walks a function body directly
// (invokeBody) and stops at the first Return it finds, instead of the
// flag-threaded visit used for ordinary mixin-mode block evaluation
// (evalBlockInto, which simply stops appending once it meets a Return).
package eval

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/colornames"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/scope"
	"github.com/matthewmueller/stylus/stylus/token"
)

// maxCallDepth bounds recursive user-function invocation (spec §4.4 point 4,
// §8: "Recursion depth exceeding 200 raises StackOverflowError").
const maxCallDepth = 200

// Func is a host-registered callable (spec §6 "Host function callable").
// Raw functions receive the unreduced argument Expression nodes; otherwise
// each argument is reduced to its first primary before the call.
type Func struct {
	Call ast.Native
	Raw  bool
}

// Resolver resolves an `@import` path against a search list, returning the
// resolved absolute path and file contents. Defined here (rather than
// depending on stylus/resolver) so eval has no dependency on the concrete
// filesystem implementation; the root stylus package wires resolver.Default
// in (spec §6 "Import resolver").
type Resolver interface {
	Resolve(filename, path string, paths []string) (resolved string, src []byte, err error)
}

// Options configures a new Evaluator (spec §6).
type Options struct {
	Paths     []string
	Resolver  Resolver
	Functions map[string]Func
	Warn      bool
}

// Evaluator holds all mutable state for one compile (spec §5: "each [compile]
// has its own ... Evaluator, Stack, and AST").
type Evaluator struct {
	stack     *scope.Stack
	resolver  Resolver
	paths     []string
	warn      bool
	warnings  []string
	filename  string
	callDepth int

	builtinNames map[string]bool
	fold         cases.Caser
}

// NewEvaluator constructs an Evaluator with its global frame populated per
// spec §4.4 Setup: named CSS colors, then default built-ins, then any
// caller-registered host functions (which may override a built-in of the
// same name).
func NewEvaluator(opts Options) *Evaluator {
	e := &Evaluator{
		stack:        scope.NewStack(),
		resolver:     opts.Resolver,
		paths:        opts.Paths,
		warn:         opts.Warn,
		builtinNames: make(map[string]bool),
		fold:         cases.Fold(),
	}

	global := scope.NewFrame(nil)
	global.Mixin = "root"
	e.stack.Push(global)

	for name, rgb := range colornames.Colors {
		global.Scope.Add(&ast.Ident{Name: name, Val: &ast.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1, SourceText: name}})
	}

	for name, fn := range defaultBuiltins() {
		global.Scope.AddFunction(&ast.Function{Name: name, Builtin: fn.Call, Raw: fn.Raw})
		e.builtinNames[name] = true
	}
	for name, fn := range opts.Functions {
		global.Scope.AddFunction(&ast.Function{Name: name, Builtin: fn.Call, Raw: fn.Raw})
	}

	return e
}

// Warnings returns the non-fatal diagnostics collected so far (spec §7).
func (e *Evaluator) Warnings() []string { return e.warnings }

// Evaluate reduces root to its output Block. preImports are compiled and
// spliced ahead of the user's own statements (spec §4.4 Setup: "visit
// configured @imports before the user's root").
func (e *Evaluator) Evaluate(root *ast.Root, filename string, preImports []string) (*ast.Block, error) {
	e.filename = filename
	e.stack.CurrentFrame().Block = root.Block

	out := ast.NewBlock(root.Block.Pos(), true)
	for _, path := range preImports {
		if err := e.importFile(token.NoPos, path, out); err != nil {
			return nil, err
		}
	}
	if err := e.evalBlockInto(root.Block, out); err != nil {
		return nil, e.withStack(err)
	}
	return out, nil
}

// withStack attaches the current frame trace to a bubbling error if it
// doesn't already carry one (spec §4.5).
func (e *Evaluator) withStack(err error) error {
	se, ok := err.(errors.Error)
	if !ok || se.Stack() != "" {
		return err
	}
	return errors.WithStack(se, e.stack.Trace())
}

// evalBlockInto evaluates src's statements in mixin mode, appending the
// resulting output statements to out. A Return statement terminates the
// splice early (spec §4.4 "a Return in mixin mode terminates the splice");
// it is otherwise only meaningful inside a function body invoked in return
// mode (see invokeBody).
func (e *Evaluator) evalBlockInto(src *ast.Block, out *ast.Block) error {
	for _, n := range src.Nodes {
		if _, ok := n.(*ast.Return); ok {
			return nil
		}
		if err := e.evalStmt(n, out); err != nil {
			return err
		}
	}
	return nil
}

// evalStmt dispatches one statement in mixin mode.
func (e *Evaluator) evalStmt(n ast.Node, out *ast.Block) error {
	switch v := n.(type) {
	case *ast.Group:
		return e.evalGroup(v, out)
	case *ast.Property:
		return e.evalProperty(v, out)
	case *ast.If:
		return e.evalIf(v, out)
	case *ast.Each:
		return e.evalEach(v, out)
	case *ast.Function:
		e.bindFunction(v)
		return nil
	case *ast.Call:
		return e.evalCallStmt(v, out)
	case *ast.ExprStmt:
		return e.evalExprStmt(v, out)
	case *ast.Import:
		return e.evalImportStmt(v, out)
	case *ast.Charset:
		out.Append(v)
		return nil
	case *ast.Media:
		return e.evalMedia(v, out)
	case *ast.Page:
		return e.evalPage(v, out)
	case *ast.Keyframes:
		return e.evalKeyframes(v, out)
	}
	return fmt.Errorf("eval: unhandled statement %T", n)
}

func (e *Evaluator) foldName(s string) string { return e.fold.String(s) }
