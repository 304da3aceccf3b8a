// Package errors defines the error kinds raised by the stylus lexer,
// parser, and evaluator (spec §7), and shared helpers for collecting and
// printing them.
package errors

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matthewmueller/stylus/stylus/token"
)

// Error is the common interface implemented by every stylus error. All
// fatal errors carry a source position, a filename, and a rendered
// evaluator stack trace (spec §7).
type Error interface {
	error
	Position() token.Pos
	Stack() string
}

// base is embedded by every concrete error kind to share position and
// stack-trace bookkeeping; it is analogous to cue/errors' posError.
type base struct {
	pos   token.Pos
	stack string
}

func (b base) Position() token.Pos { return b.pos }
func (b base) Stack() string       { return b.stack }

// WithStack returns a copy of err with its evaluator stack trace set, used
// by the evaluator to attach stack traces to errors bubbling up from a
// child visit that lack one (spec §4.5).
func WithStack(err Error, stack string) Error {
	switch e := err.(type) {
	case *LexError:
		c := *e
		c.stack = stack
		return &c
	case *ParseError:
		c := *e
		c.stack = stack
		return &c
	case *NameError:
		c := *e
		c.stack = stack
		return &c
	case *TypeError:
		c := *e
		c.stack = stack
		return &c
	case *MissingArgumentError:
		c := *e
		c.stack = stack
		return &c
	case *ImportError:
		c := *e
		c.stack = stack
		return &c
	case *StackOverflowError:
		c := *e
		c.stack = stack
		return &c
	case *HostFunctionError:
		c := *e
		c.stack = stack
		return &c
	default:
		return err
	}
}

// LexError reports an illegal character, unterminated string/comment, or
// mixed indentation found by the scanner (spec §4.1).
type LexError struct {
	base
	Filename string
	Message  string
}

func NewLexError(pos token.Pos, filename, msg string) *LexError {
	return &LexError{base{pos: pos}, filename, msg}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.pos, e.Message)
}

// ParseError reports an unexpected token encountered by the parser (spec
// §4.2).
type ParseError struct {
	base
	Filename string
	Expected string
	Actual   string
}

func NewParseError(pos token.Pos, filename, expected, actual string) *ParseError {
	return &ParseError{base{pos: pos}, filename, expected, actual}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.pos, e.Expected, e.Actual)
}

// NameError reports an undefined variable used where the evaluator requires
// a value (spec §7).
type NameError struct {
	base
	Name string
}

func NewNameError(pos token.Pos, name string) *NameError {
	return &NameError{base{pos: pos}, name}
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: %s is not defined", e.pos, e.Name)
}

// TypeError reports a coercion failure outside the special-cased ==/!=
// comparison operators (spec §4.4 visitBinOp).
type TypeError struct {
	base
	Message string
}

func NewTypeError(pos token.Pos, msg string) *TypeError {
	return &TypeError{base{pos: pos}, msg}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.pos, e.Message)
}

// MissingArgumentError reports a call missing a required argument with no
// default (spec §4.4 User function invocation).
type MissingArgumentError struct {
	base
	Function string
	Param    string
}

func NewMissingArgumentError(pos token.Pos, fn, param string) *MissingArgumentError {
	return &MissingArgumentError{base{pos: pos}, fn, param}
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: %s() is missing argument %s", e.pos, e.Function, e.Param)
}

// ImportError reports a file not found or unreadable at @import time (spec
// §4.4 Imports).
type ImportError struct {
	base
	Path string
	Err  error
}

func NewImportError(pos token.Pos, path string, err error) *ImportError {
	return &ImportError{base{pos: pos}, path, err}
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to import %q: %s", e.pos, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: failed to import %q", e.pos, e.Path)
}

func (e *ImportError) Unwrap() error { return e.Err }

// StackOverflowError reports a call stack deeper than 200 frames (spec §4.4
// point 4, §8).
type StackOverflowError struct {
	base
	Depth int
}

func NewStackOverflowError(pos token.Pos, depth int) *StackOverflowError {
	return &StackOverflowError{base{pos: pos}, depth}
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("%s: maximum call stack size exceeded (depth %d)", e.pos, e.Depth)
}

// HostFunctionError wraps an error thrown from a host function (spec §6).
type HostFunctionError struct {
	base
	Function string
	Err      error
}

func NewHostFunctionError(pos token.Pos, fn string, err error) *HostFunctionError {
	return &HostFunctionError{base{pos: pos}, fn, err}
}

func (e *HostFunctionError) Error() string {
	return fmt.Sprintf("%s: %s(): %s", e.pos, e.Function, e.Err)
}

func (e *HostFunctionError) Unwrap() error { return e.Err }

// List is a list of Errors, implementing the error interface itself (spec
// §7's "every fatal error" policy is enforced by the evaluator/parser/
// scanner constructing single errors; List is used by callers that want to
// collect multiple, e.g. the parser's accumulated syntax errors).
type List []Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Add appends err to the list.
func (l *List) Add(err Error) { *l = append(*l, err) }

// Sort orders the list by source position.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Position().Compare(l[j].Position()) < 0
	})
}

// Print writes one error per line to w.
func Print(w io.Writer, errs ...Error) {
	for _, e := range errs {
		fmt.Fprintln(w, e.Error())
		if stack := e.Stack(); stack != "" {
			for _, line := range strings.Split(strings.TrimRight(stack, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}
