package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/matthewmueller/stylus/stylus/token"
)

// ----------------------------------------------------------------------
// Literal (unresolved identifier text, re-emitted verbatim as CSS; spec
// glossary "Literal call").

type Literal struct {
	LitPos token.Pos
	Text   string
}

func (l *Literal) Pos() token.Pos { return l.LitPos }
func (l *Literal) Clone() Node    { c := *l; return &c }
func (l *Literal) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (l *Literal) First() Value   { return l }
func (l *Literal) Operate(op token.Token, rhs Value) (Value, error) {
	return stringOperate(l.LitPos, l.Text, op, rhs)
}

// ----------------------------------------------------------------------
// String

type String struct {
	StrPos token.Pos
	Value  string
	Quote  byte // '"' or '\''; 0 if produced synthetically
}

func (s *String) Pos() token.Pos { return s.StrPos }
func (s *String) Clone() Node    { c := *s; return &c }
func (s *String) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (s *String) First() Value   { return s }
func (s *String) Operate(op token.Token, rhs Value) (Value, error) {
	return stringOperate(s.StrPos, s.Value, op, rhs)
}

func stringOperate(pos token.Pos, lhs string, op token.Token, rhs Value) (Value, error) {
	rstr := stringify(rhs)
	switch op {
	case token.ADD:
		return &String{StrPos: pos, Value: lhs + rstr, Quote: '"'}, nil
	case token.EQL:
		return &Boolean{Value: lhs == rstr}, nil
	case token.NEQ:
		return &Boolean{Value: lhs != rstr}, nil
	}
	return nil, fmt.Errorf("cannot apply %s to a string", op)
}

func stringify(v Value) string {
	switch x := v.(type) {
	case *String:
		return x.Value
	case *Literal:
		return x.Text
	case *Ident:
		return x.Name
	case *Unit:
		return x.String()
	case *Color:
		return x.String()
	case *Boolean:
		if x.Value {
			return "true"
		}
		return "false"
	case *Null:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ----------------------------------------------------------------------
// Boolean

type Boolean struct {
	BoolPos token.Pos
	Value   bool
}

func (b *Boolean) Pos() token.Pos     { return b.BoolPos }
func (b *Boolean) Clone() Node        { c := *b; return &c }
func (b *Boolean) ToBoolean() *Boolean { return b }
func (b *Boolean) First() Value       { return b }
func (b *Boolean) Operate(op token.Token, rhs Value) (Value, error) {
	rb, ok := rhs.(*Boolean)
	switch op {
	case token.EQL:
		return &Boolean{Value: ok && rb.Value == b.Value}, nil
	case token.NEQ:
		return &Boolean{Value: !ok || rb.Value != b.Value}, nil
	case token.LAND, token.AND_KW:
		return &Boolean{Value: b.Value && ok && rb.Value}, nil
	case token.LOR, token.OR_KW:
		return &Boolean{Value: b.Value || (ok && rb.Value)}, nil
	}
	return nil, fmt.Errorf("cannot apply %s to a boolean", op)
}

// ----------------------------------------------------------------------
// Null

type Null struct {
	NullPos token.Pos
}

func (n *Null) Pos() token.Pos     { return n.NullPos }
func (n *Null) Clone() Node        { c := *n; return &c }
func (n *Null) ToBoolean() *Boolean { return &Boolean{Value: false} }
func (n *Null) First() Value       { return n }
func (n *Null) Operate(op token.Token, rhs Value) (Value, error) {
	_, isNull := rhs.(*Null)
	switch op {
	case token.EQL:
		return &Boolean{Value: isNull}, nil
	case token.NEQ:
		return &Boolean{Value: !isNull}, nil
	}
	return nil, fmt.Errorf("cannot apply %s to null", op)
}

// ----------------------------------------------------------------------
// Unit (a number with an optional CSS unit suffix: px, em, %, deg, ...).
// Arithmetic uses apd.Decimal so that 10px + 5px is exact (spec §8, SPEC_FULL
// Domain Stack).

type Unit struct {
	UnitPos token.Pos
	Value   apd.Decimal
	Suffix  string
}

var decCtx = apd.BaseContext.WithPrecision(34)

func NewUnit(pos token.Pos, value string, suffix string) (*Unit, error) {
	d, _, err := apd.NewFromString(value)
	if err != nil {
		return nil, err
	}
	return &Unit{UnitPos: pos, Value: *d, Suffix: suffix}, nil
}

func NewUnitFromInt(pos token.Pos, n int64, suffix string) *Unit {
	return &Unit{UnitPos: pos, Value: *apd.New(n, 0), Suffix: suffix}
}

func (u *Unit) Pos() token.Pos { return u.UnitPos }
func (u *Unit) Clone() Node    { c := *u; return &c }
func (u *Unit) ToBoolean() *Boolean {
	return &Boolean{Value: !u.Value.IsZero()}
}
func (u *Unit) First() Value { return u }

// String renders the unit the way it should appear in CSS output.
func (u *Unit) String() string {
	s := u.Value.Text('f')
	return s + u.Suffix
}

// IsZero reports whether the numeric value is exactly zero.
func (u *Unit) IsZero() bool { return u.Value.IsZero() }

// Negate returns -u, unit suffix preserved (spec §4.4 visitUnaryOp "-").
func (u *Unit) Negate() *Unit {
	result := new(apd.Decimal)
	decCtx.Neg(result, &u.Value)
	return &Unit{UnitPos: u.UnitPos, Value: *result, Suffix: u.Suffix}
}

func (u *Unit) Operate(op token.Token, rhs Value) (Value, error) {
	ru, ok := rhs.(*Unit)
	if !ok {
		if op == token.EQL {
			return &Boolean{Value: false}, nil
		}
		if op == token.NEQ {
			return &Boolean{Value: true}, nil
		}
		return nil, fmt.Errorf("cannot apply %s between a unit and %T", op, rhs)
	}
	suffix := u.Suffix
	if suffix == "" {
		suffix = ru.Suffix
	} else if ru.Suffix != "" && ru.Suffix != suffix {
		// Mismatched units: arithmetic still proceeds numerically (stylus
		// does not carry a unit-conversion table in the core), but
		// comparisons treat mismatched units as unequal.
		if op == token.EQL {
			return &Boolean{Value: false}, nil
		}
		if op == token.NEQ {
			return &Boolean{Value: true}, nil
		}
	}
	result := new(apd.Decimal)
	switch op {
	case token.ADD:
		if _, err := decCtx.Add(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.SUB:
		if _, err := decCtx.Sub(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.MUL:
		if _, err := decCtx.Mul(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.QUO:
		if ru.Value.IsZero() {
			return nil, fmt.Errorf("division by zero")
		}
		if _, err := decCtx.Quo(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.REM:
		if _, err := decCtx.Rem(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.POW:
		if _, err := decCtx.Pow(result, &u.Value, &ru.Value); err != nil {
			return nil, err
		}
	case token.EQL:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) == 0 && u.Suffix == ru.Suffix}, nil
	case token.NEQ:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) != 0 || u.Suffix != ru.Suffix}, nil
	case token.LSS:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) < 0}, nil
	case token.LEQ:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) <= 0}, nil
	case token.GTR:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) > 0}, nil
	case token.GEQ:
		return &Boolean{Value: u.Value.Cmp(&ru.Value) >= 0}, nil
	default:
		return nil, fmt.Errorf("cannot apply %s to a unit", op)
	}
	return &Unit{UnitPos: u.UnitPos, Value: *result, Suffix: suffix}, nil
}

// ----------------------------------------------------------------------
// Color (spec §8: "#fff + #000 evaluates to #ffffff").

type Color struct {
	ColorPos   token.Pos
	R, G, B    uint8
	A          float64 // 1.0 == opaque
	HadAlpha   bool
	SourceText string // original literal text or color name; String does not use it
}

func (c *Color) Pos() token.Pos { return c.ColorPos }
func (c *Color) Clone() Node    { d := *c; return &d }
func (c *Color) ToBoolean() *Boolean { return &Boolean{Value: true} }
func (c *Color) First() Value   { return c }

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// String renders the color as a CSS hex (or rgba()) literal.
func (c *Color) String() string {
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d,%d,%d,%v)", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c *Color) Operate(op token.Token, rhs Value) (Value, error) {
	rc, ok := rhs.(*Color)
	switch op {
	case token.EQL:
		return &Boolean{Value: ok && *rc == *c}, nil
	case token.NEQ:
		return &Boolean{Value: !ok || *rc != *c}, nil
	}
	if !ok {
		if ru, isUnit := rhs.(*Unit); isUnit {
			n, _ := ru.Value.Float64()
			return c.operateScalar(op, n)
		}
		return nil, fmt.Errorf("cannot apply %s between a color and %T", op, rhs)
	}
	switch op {
	case token.ADD:
		return &Color{ColorPos: c.ColorPos,
			R: clamp8(int(c.R) + int(rc.R)),
			G: clamp8(int(c.G) + int(rc.G)),
			B: clamp8(int(c.B) + int(rc.B)),
			A: clampUnit(c.A + rc.A - 1),
		}, nil
	case token.SUB:
		return &Color{ColorPos: c.ColorPos,
			R: clamp8(int(c.R) - int(rc.R)),
			G: clamp8(int(c.G) - int(rc.G)),
			B: clamp8(int(c.B) - int(rc.B)),
			A: c.A,
		}, nil
	}
	return nil, fmt.Errorf("cannot apply %s to a color", op)
}

func (c *Color) operateScalar(op token.Token, n float64) (Value, error) {
	switch op {
	case token.ADD:
		return &Color{ColorPos: c.ColorPos, R: clamp8(int(float64(c.R) + n)), G: clamp8(int(float64(c.G) + n)), B: clamp8(int(float64(c.B) + n)), A: c.A}, nil
	case token.SUB:
		return &Color{ColorPos: c.ColorPos, R: clamp8(int(float64(c.R) - n)), G: clamp8(int(float64(c.G) - n)), B: clamp8(int(float64(c.B) - n)), A: c.A}, nil
	case token.MUL:
		return &Color{ColorPos: c.ColorPos, R: clamp8(int(float64(c.R) * n)), G: clamp8(int(float64(c.G) * n)), B: clamp8(int(float64(c.B) * n)), A: c.A}, nil
	case token.QUO:
		if n == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return &Color{ColorPos: c.ColorPos, R: clamp8(int(float64(c.R) / n)), G: clamp8(int(float64(c.G) / n)), B: clamp8(int(float64(c.B) / n)), A: c.A}, nil
	}
	return nil, fmt.Errorf("cannot apply %s between a color and a unit", op)
}

// ----------------------------------------------------------------------
// Ident: a lookup (Val == nil) or an assignment (Val != nil), per spec §3.

type Ident struct {
	NamePos token.Pos
	Name    string
	Val     Value // nil denotes a lookup
}

func (id *Ident) Pos() token.Pos { return id.NamePos }
func (id *Ident) Clone() Node {
	c := &Ident{NamePos: id.NamePos, Name: id.Name}
	if id.Val != nil {
		c.Val = id.Val.Clone().(Value)
	}
	return c
}
func (id *Ident) ToBoolean() *Boolean {
	if id.Val != nil {
		return id.Val.ToBoolean()
	}
	return &Boolean{Value: true}
}
func (id *Ident) First() Value {
	if id.Val != nil {
		return id.Val.First()
	}
	return id
}
func (id *Ident) Operate(op token.Token, rhs Value) (Value, error) {
	if id.Val != nil {
		return id.Val.Operate(op, rhs)
	}
	return stringOperate(id.NamePos, id.Name, op, rhs)
}

// ----------------------------------------------------------------------
// Expression: a comma-separated list (IsList) or a juxtaposed primary
// sequence (!IsList), per spec §3.

type Expression struct {
	ExprPos token.Pos
	IsList  bool
	Nodes   []Value
}

func (e *Expression) Pos() token.Pos { return e.ExprPos }
func (e *Expression) Clone() Node {
	c := &Expression{ExprPos: e.ExprPos, IsList: e.IsList, Nodes: make([]Value, len(e.Nodes))}
	for i, n := range e.Nodes {
		c.Nodes[i] = n.Clone().(Value)
	}
	return c
}
func (e *Expression) ToBoolean() *Boolean {
	if len(e.Nodes) == 0 {
		return &Boolean{Value: false}
	}
	return e.Nodes[len(e.Nodes)-1].ToBoolean()
}

// First returns the first primary: for a single-node expression this
// unwraps to that node's own First(); for a multi-node juxtaposition it
// returns the expression unwrapped to its first element.
func (e *Expression) First() Value {
	if len(e.Nodes) == 0 {
		return e
	}
	return e.Nodes[0].First()
}

func (e *Expression) Operate(op token.Token, rhs Value) (Value, error) {
	return e.First().Operate(op, rhs)
}

// Append adds a value to the expression's node list.
func (e *Expression) Append(v Value) { e.Nodes = append(e.Nodes, v) }

// String renders a space/comma-joined textual form, used by the printer and
// by literal-call fallback re-emission.
func (e *Expression) String() string {
	parts := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		parts[i] = stringify(n)
	}
	sep := " "
	if e.IsList {
		sep = ", "
	}
	return strings.Join(parts, sep)
}

// SortedKeys returns m's keys in sorted order; nothing in this module calls
// it at present. It lives in ast because that is where Value-sorting-by-name
// lives for deterministic iteration (spec has no map iteration order dependency, but
// Go maps are unordered so anything that must be stable sorts explicitly).
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
