// Package stylus is the library entry point (spec §6): compile(source,
// options) -> css_string, wiring the scanner/parser, evaluator, resolver,
// and printer collaborators described by the sub-packages.
package stylus

import (
	"github.com/kr/pretty"

	"github.com/matthewmueller/stylus/stylus/ast"
	"github.com/matthewmueller/stylus/stylus/errors"
	"github.com/matthewmueller/stylus/stylus/eval"
	"github.com/matthewmueller/stylus/stylus/parser"
	"github.com/matthewmueller/stylus/stylus/printer"
	"github.com/matthewmueller/stylus/stylus/resolver"
)

// Func is a host function callable registered via Options.Functions (spec
// §6 "Host function callable").
type Func = eval.Func

// Options configures a single compile (spec §6 enumerated options).
type Options struct {
	// Filename is used for error messages and to resolve relative
	// @imports; it need not name a real file.
	Filename string
	// Paths is the @import search path, consulted after the source
	// file's own directory.
	Paths []string
	// Resolver overrides the default filesystem @import resolver.
	Resolver eval.Resolver
	// Functions registers additional host functions, which may shadow a
	// built-in of the same name.
	Functions map[string]Func
	// Imports names files compiled and spliced ahead of source itself.
	Imports []string
	// Warn enables non-fatal diagnostic collection (spec §7).
	Warn bool
	// Debug, when set, renders a verbose dump of the parsed AST via
	// kr/pretty alongside an evaluation error, to help diagnose evaluator bugs
	// without needing a debugger attached.
	Debug bool
	// Indent overrides the printer's per-level indent string.
	Indent string
}

// Compile turns source into CSS text.
func Compile(source []byte, opts Options) (string, error) {
	css, _, err := CompileWith(source, opts)
	return css, err
}

// CompileWith behaves like Compile but also returns any warnings collected
// during evaluation (spec §7).
func CompileWith(source []byte, opts Options) (string, []string, error) {
	filename := opts.Filename
	if filename == "" {
		filename = "<stylus>"
	}

	root, err := parser.ParseFile(filename, source)
	if err != nil {
		return "", nil, err
	}

	res := opts.Resolver
	if res == nil {
		res = resolver.Default{}
	}

	e := eval.NewEvaluator(eval.Options{
		Paths:     opts.Paths,
		Resolver:  res,
		Functions: opts.Functions,
		Warn:      opts.Warn,
	})

	out, err := e.Evaluate(root, filename, opts.Imports)
	if err != nil {
		if opts.Debug {
			return "", e.Warnings(), debugError(err, root)
		}
		return "", e.Warnings(), err
	}

	return printer.Print(out, printer.Options{Indent: opts.Indent}), e.Warnings(), nil
}

// debugError enriches an evaluation error with a kr/pretty dump of the
// parsed (not yet evaluated) AST, for interactive troubleshooting
// (opts.Debug).
func debugError(err error, root *ast.Root) error {
	dump := pretty.Sprint(root)
	if se, ok := err.(errors.Error); ok {
		return &debugWrap{Error: se, Dump: dump}
	}
	return err
}

// debugWrap carries the original error plus a structural dump; its
// Error() keeps the original message so callers relying on err.Error()
// remain unaffected, while the Dump field is available to debug tooling.
type debugWrap struct {
	errors.Error
	Dump string
}
