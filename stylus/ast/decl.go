package ast

import (
	"fmt"

	"github.com/matthewmueller/stylus/stylus/token"
)

// ----------------------------------------------------------------------
// Unevaluated expression nodes. The evaluator reduces these to a concrete
// Value (String/Unit/Color/Boolean/...) before they are used as operands;
// their Value-interface methods are therefore only ever exercised pre-
// evaluation by the parser's own sanity checks, and by printer fallback.

type BinOp struct {
	OpPos token.Pos
	Op    token.Token
	Left  Value
	Right Value
	// Ambiguous marks a '/' found directly in a property value outside any
	// parentheses: CSS shorthand ("font: 12px/1.5") uses '/' as a literal
	// separator there, while "(12px/1.5)" is arithmetic division (spec §9
	// Open Question, "parens anywhere in the division's lexical ancestry
	// make it arithmetic"). The evaluator renders an Ambiguous BinOp as
	// "left/right" text instead of dividing.
	Ambiguous bool
}

func (b *BinOp) Pos() token.Pos { return b.OpPos }
func (b *BinOp) Clone() Node {
	return &BinOp{OpPos: b.OpPos, Op: b.Op, Left: b.Left.Clone().(Value), Right: b.Right.Clone().(Value), Ambiguous: b.Ambiguous}
}
func (b *BinOp) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (b *BinOp) First() Value        { return b }
func (b *BinOp) Operate(token.Token, Value) (Value, error) {
	return nil, fmt.Errorf("internal error: unevaluated BinOp used as operand")
}

type UnaryOp struct {
	OpPos token.Pos
	Op    token.Token
	Expr  Value
}

func (u *UnaryOp) Pos() token.Pos { return u.OpPos }
func (u *UnaryOp) Clone() Node {
	return &UnaryOp{OpPos: u.OpPos, Op: u.Op, Expr: u.Expr.Clone().(Value)}
}
func (u *UnaryOp) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (u *UnaryOp) First() Value        { return u }
func (u *UnaryOp) Operate(token.Token, Value) (Value, error) {
	return nil, fmt.Errorf("internal error: unevaluated UnaryOp used as operand")
}

type Ternary struct {
	TernPos token.Pos
	Cond    Value
	True    Value
	False   Value
}

func (t *Ternary) Pos() token.Pos { return t.TernPos }
func (t *Ternary) Clone() Node {
	return &Ternary{TernPos: t.TernPos, Cond: t.Cond.Clone().(Value), True: t.True.Clone().(Value), False: t.False.Clone().(Value)}
}
func (t *Ternary) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (t *Ternary) First() Value        { return t }
func (t *Ternary) Operate(token.Token, Value) (Value, error) {
	return nil, fmt.Errorf("internal error: unevaluated Ternary used as operand")
}

// ----------------------------------------------------------------------
// Selector / Group

// Selector is a single selector within a Group, e.g. "a:hover" in
// "a:hover, a:focus". Segments preserves any "{expr}" interpolation found
// in the header text so the evaluator can substitute it before Text is
// fixed for printing (spec §8 scenario 4, ".x-{v}").
type Selector struct {
	SelPos   token.Pos
	Text     string
	Segments []Segment
	Parent   *Group
}

func (s *Selector) Pos() token.Pos { return s.SelPos }
func (s *Selector) Clone() Node {
	c := &Selector{SelPos: s.SelPos, Text: s.Text, Segments: make([]Segment, len(s.Segments))}
	copy(c.Segments, s.Segments)
	for i, seg := range c.Segments {
		if seg.Expr != nil {
			c.Segments[i].Expr = seg.Expr.Clone().(Value)
		}
	}
	return c
}

// Group is a set of comma-separated selectors sharing one block (spec
// glossary "Group"). A Group's Block is owned solely by the group; cloning
// a group deep-clones its block (spec §3 invariant).
type Group struct {
	GroupPos  token.Pos
	Selectors []*Selector
	Block     *Block
}

func (g *Group) Pos() token.Pos { return g.GroupPos }
func (g *Group) Clone() Node {
	c := &Group{GroupPos: g.GroupPos, Selectors: make([]*Selector, len(g.Selectors))}
	for i, s := range g.Selectors {
		cs := s.Clone().(*Selector)
		cs.Parent = c
		c.Selectors[i] = cs
	}
	c.Block = g.Block.Clone().(*Block)
	c.Block.Parent = c
	return c
}

// ----------------------------------------------------------------------
// Property

// Segment is one piece of an interpolated property name: either a literal
// identifier fragment or an embedded expression ("padding-{side}").
type Segment struct {
	SegPos token.Pos
	Text   string // set when this is a literal fragment
	Expr   Value  // set when this is an {expression} interpolation
}

// Property is a "name: expr" declaration, or, once the evaluator has
// reinterpreted it as a mixin call (spec §4.4 Property evaluation), the
// spliced-in result of that call. Literal == true marks a property already
// reduced; revisiting it is then a no-op (spec §3 invariant, §8 idempotence).
type Property struct {
	PropPos  token.Pos
	Segments []Segment
	Expr     *Expression
	Literal  bool
}

func (p *Property) Pos() token.Pos { return p.PropPos }
func (p *Property) Clone() Node {
	c := &Property{PropPos: p.PropPos, Literal: p.Literal, Segments: make([]Segment, len(p.Segments))}
	copy(c.Segments, p.Segments)
	for i, s := range c.Segments {
		if s.Expr != nil {
			c.Segments[i].Expr = s.Expr.Clone().(Value)
		}
	}
	if p.Expr != nil {
		c.Expr = p.Expr.Clone().(*Expression)
	}
	return c
}

// Name returns the literal name when the property has no interpolation
// segments (the common case); it is filled in by the evaluator otherwise.
func (p *Property) Name() string {
	if len(p.Segments) == 1 && p.Segments[0].Expr == nil {
		return p.Segments[0].Text
	}
	return ""
}

// ----------------------------------------------------------------------
// If / Each

// If implements both @if and the postfix "if"/"unless" forms (Negate is
// set for "unless" and for postfix "unless"). Elses holds an optional chain
// of "else if" nodes followed optionally by a final plain "else" (encoded
// as an If with Cond == nil).
type If struct {
	IfPos  token.Pos
	Cond   Value
	Block  *Block
	Elses  []*If
	Negate bool
}

func (i *If) Pos() token.Pos { return i.IfPos }
func (i *If) Clone() Node {
	c := &If{IfPos: i.IfPos, Negate: i.Negate}
	if i.Cond != nil {
		c.Cond = i.Cond.Clone().(Value)
	}
	c.Block = i.Block.Clone().(*Block)
	c.Block.Parent = c
	c.Elses = make([]*If, len(i.Elses))
	for idx, e := range i.Elses {
		c.Elses[idx] = e.Clone().(*If)
	}
	return c
}

// Each implements @for value [, key] in expr.
type Each struct {
	EachPos token.Pos
	Val     string
	Key     string // "" means the default __index__ binding is implicit
	Expr    Value
	Block   *Block
}

func (e *Each) Pos() token.Pos { return e.EachPos }
func (e *Each) Clone() Node {
	c := &Each{EachPos: e.EachPos, Val: e.Val, Key: e.Key, Expr: e.Expr.Clone().(Value)}
	c.Block = e.Block.Clone().(*Block)
	c.Block.Parent = c
	return c
}

// ----------------------------------------------------------------------
// Function / Params / Call / Return

// Param is one parameter in a function definition: a name, an optional
// default expression, and whether it is the rest parameter.
type Param struct {
	Name    string
	Default Value
	Rest    bool
}

type Params struct {
	ParamsPos token.Pos
	List      []*Param
}

func (p *Params) Pos() token.Pos { return p.ParamsPos }
func (p *Params) Clone() Node {
	c := &Params{ParamsPos: p.ParamsPos, List: make([]*Param, len(p.List))}
	for i, pa := range p.List {
		np := &Param{Name: pa.Name, Rest: pa.Rest}
		if pa.Default != nil {
			np.Default = pa.Default.Clone().(Value)
		}
		c.List[i] = np
	}
	return c
}

// Native is the signature host/built-in functions are registered under
// (spec §6 "Host function callable"); Raw functions receive the full
// Expression argument list, others receive already-reduced primaries.
type Native func(args []Value) (Value, error)

// Function represents either a user-defined function/mixin (Params+Block
// set, Builtin nil) or a native one wrapped for the same call site (spec
// §9: "represent Function as a sum { UserDefined, Native }").
type Function struct {
	FnPos   token.Pos
	Name    string
	Params  *Params
	Block   *Block
	Builtin Native
	Raw     bool // when set and Builtin != nil, pass unreduced Expression args
}

func (f *Function) Pos() token.Pos { return f.FnPos }
func (f *Function) Clone() Node {
	c := &Function{FnPos: f.FnPos, Name: f.Name, Builtin: f.Builtin, Raw: f.Raw}
	if f.Params != nil {
		c.Params = f.Params.Clone().(*Params)
	}
	if f.Block != nil {
		c.Block = f.Block.Clone().(*Block)
		c.Block.Parent = c
	}
	return c
}

// IsNative reports whether this Function wraps a host/built-in callable
// rather than a user-defined body.
func (f *Function) IsNative() bool { return f.Builtin != nil }

// Call is a function/mixin invocation.
type Call struct {
	CallPos token.Pos
	Name    string
	Args    *Expression
}

func (c *Call) Pos() token.Pos { return c.CallPos }
func (c *Call) Clone() Node {
	nc := &Call{CallPos: c.CallPos, Name: c.Name}
	if c.Args != nil {
		nc.Args = c.Args.Clone().(*Expression)
	}
	return nc
}

// Return is a "return expr" statement (or a bare "return").
type Return struct {
	RetPos token.Pos
	Expr   Value // nil for a bare return
}

func (r *Return) Pos() token.Pos { return r.RetPos }
func (r *Return) Clone() Node {
	c := &Return{RetPos: r.RetPos}
	if r.Expr != nil {
		c.Expr = r.Expr.Clone().(Value)
	}
	return c
}

// ----------------------------------------------------------------------
// @import / @charset / @media / @page / @keyframes

type Import struct {
	ImportPos token.Pos
	Path      string
}

func (i *Import) Pos() token.Pos { return i.ImportPos }
func (i *Import) Clone() Node    { c := *i; return &c }

type Charset struct {
	CharsetPos token.Pos
	Value      string
}

func (c *Charset) Pos() token.Pos { return c.CharsetPos }
func (c *Charset) Clone() Node    { d := *c; return &d }

type Media struct {
	MediaPos token.Pos
	Query    []Segment
	Block    *Block
}

func (m *Media) Pos() token.Pos { return m.MediaPos }
func (m *Media) Clone() Node {
	c := &Media{MediaPos: m.MediaPos, Query: make([]Segment, len(m.Query))}
	copy(c.Query, m.Query)
	for i, s := range c.Query {
		if s.Expr != nil {
			c.Query[i].Expr = s.Expr.Clone().(Value)
		}
	}
	c.Block = m.Block.Clone().(*Block)
	c.Block.Parent = c
	return c
}

type Page struct {
	PagePos  token.Pos
	Selector string
	Block    *Block
}

func (p *Page) Pos() token.Pos { return p.PagePos }
func (p *Page) Clone() Node {
	c := &Page{PagePos: p.PagePos, Selector: p.Selector}
	c.Block = p.Block.Clone().(*Block)
	c.Block.Parent = c
	return c
}

// Frame is one "from"/"to"/"N%" block inside @keyframes.
type Frame struct {
	Selector string
	Block    *Block
}

type Keyframes struct {
	KeyframesPos token.Pos
	Name         string
	Frames       []*Frame
}

func (k *Keyframes) Pos() token.Pos { return k.KeyframesPos }
func (k *Keyframes) Clone() Node {
	c := &Keyframes{KeyframesPos: k.KeyframesPos, Name: k.Name, Frames: make([]*Frame, len(k.Frames))}
	for i, f := range k.Frames {
		nf := &Frame{Selector: f.Selector, Block: f.Block.Clone().(*Block)}
		c.Frames[i] = nf
	}
	return c
}
