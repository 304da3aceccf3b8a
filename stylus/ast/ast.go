// Package ast declares the node variants used to represent stylus syntax
// trees (spec §3) along with the small per-node behaviors ("visitor trait
// per operation", spec §9) the evaluator and printer dispatch against:
// Clone, Coerce, Operate, ToBoolean, and First.
package ast

import (
	"github.com/matthewmueller/stylus/stylus/token"
)

// Node is implemented by every AST node. Every node carries the source line
// assigned when its first token was consumed (spec §3 invariant).
type Node interface {
	Pos() token.Pos
	Clone() Node
}

// Value is implemented by every node that can appear as an expression
// result: literals, idents, and the composite expression nodes. Value
// embeds the three node behaviors the evaluator needs to reduce and
// compare values (spec §9's "visitor trait per operation").
type Value interface {
	Node
	// ToBoolean coerces the value to a Boolean, following CSS/stylus
	// truthiness: null and the zero unit are falsey, everything else
	// (including the empty string) is truthy.
	ToBoolean() *Boolean
	// First returns the innermost primary of a value: for a list or space
	// separated Expression this is the first Node; for anything else it is
	// the receiver itself (spec glossary, "Primary").
	First() Value
	// Operate applies the binary operator op with rhs as the right-hand
	// side, returning a new Value or an error if the types cannot be
	// coerced for op (spec §4.4 visitBinOp).
	Operate(op token.Token, rhs Value) (Value, error)
}

// Stmt is implemented by every node that can appear directly inside a
// Block's statement list.
type Stmt interface {
	Node
	stmtNode()
}

func (*Group) stmtNode()      {}
func (*Property) stmtNode()   {}
func (*If) stmtNode()         {}
func (*Each) stmtNode()       {}
func (*Function) stmtNode()   {}
func (*Call) stmtNode()       {}
func (*Return) stmtNode()     {}
func (*Import) stmtNode()     {}
func (*Charset) stmtNode()    {}
func (*Media) stmtNode()      {}
func (*Page) stmtNode()       {}
func (*Keyframes) stmtNode()  {}

// ExprStmt lets any Value be used directly as a statement (a bare
// expression statement, spec §4.2 "Statement dispatch").
type ExprStmt struct {
	X Value
}

func (s *ExprStmt) Pos() token.Pos { return s.X.Pos() }
func (s *ExprStmt) Clone() Node    { return &ExprStmt{X: s.X.Clone().(Value)} }
func (*ExprStmt) stmtNode()        {}

// Root is the top-level node produced by parsing a source file. Its Block
// has no parent (spec §3 invariant: every Block has a parent except the
// root).
type Root struct {
	Block *Block
}

func (r *Root) Pos() token.Pos { return token.NoPos }
func (r *Root) Clone() Node    { return &Root{Block: r.Block.Clone().(*Block)} }

// Block holds an ordered list of statements. Scoped == false inhibits
// creation of a new lexical frame when the evaluator visits it (used by
// @if and @for bodies, spec §3 invariant).
type Block struct {
	BlockPos token.Pos
	Parent   Node // back-reference only; not owned, not cloned downward
	Scoped   bool
	Nodes    []Node
}

func NewBlock(pos token.Pos, scoped bool) *Block {
	return &Block{BlockPos: pos, Scoped: scoped}
}

func (b *Block) Pos() token.Pos { return b.BlockPos }

// Clone deep-clones a block's statements but re-links Parent to nil; the
// caller is responsible for relinking Parent at the new site (spec §9:
// "cloning copies only downward pointers; parents are re-linked at the new
// site").
func (b *Block) Clone() Node {
	nb := &Block{BlockPos: b.BlockPos, Scoped: b.Scoped, Nodes: make([]Node, len(b.Nodes))}
	for i, n := range b.Nodes {
		nb.Nodes[i] = n.Clone()
	}
	return nb
}

// Append adds a statement to the end of the block.
func (b *Block) Append(n Node) { b.Nodes = append(b.Nodes, n) }

// Splice replaces the statement at index i with the given nodes, flattening
// any nested Block (spec §4.4 "Invoke semantics", mixin mode).
func (b *Block) Splice(i int, nodes ...Node) {
	flat := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if nb, ok := n.(*Block); ok {
			flat = append(flat, nb.Nodes...)
			continue
		}
		flat = append(flat, n)
	}
	tail := append([]Node{}, b.Nodes[i+1:]...)
	b.Nodes = append(b.Nodes[:i], append(flat, tail...)...)
}
